package classification

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fti/internal/model"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewDefaultClassifier()

	tests := []struct {
		name        string
		description string
		want        model.Category
	}{
		{name: "coffee shop", description: "Coffee at Starbucks", want: model.CategoryFood},
		{name: "no keyword", description: "Random gibberish xyz", want: model.CategoryOther},
		{name: "case insensitive", description: "UBER TRIP 1234", want: model.CategoryTransportation},
		{name: "streaming", description: "Netflix", want: model.CategoryEntertainment},
		{name: "multi word keyword", description: "Payment received from client", want: model.CategoryIncome},
		{name: "earlier category wins", description: "Gas bill", want: model.CategoryTransportation},
		{name: "food beats shopping", description: "Grocery store", want: model.CategoryFood},
		{name: "substring inside word", description: "Business lunch", want: model.CategoryFood},
		{name: "empty", description: "", want: model.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.description))
		})
	}
}

func TestClassifier_Resolve(t *testing.T) {
	c := NewDefaultClassifier()

	tests := []struct {
		name        string
		requested   model.Category
		description string
		want        model.Category
	}{
		{name: "explicit category kept", requested: model.CategoryTravel, description: "Coffee", want: model.CategoryTravel},
		{name: "missing category classified", requested: "", description: "Coffee", want: model.CategoryFood},
		{name: "other forces classification", requested: model.CategoryOther, description: "Coffee", want: model.CategoryFood},
		{name: "other stays other without match", requested: model.CategoryOther, description: "zzz", want: model.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Resolve(tt.requested, tt.description))
		})
	}
}

func TestNewClassifier_Validation(t *testing.T) {
	_, err := NewClassifier([]Rule{{Category: "Pets", Keywords: []string{"vet"}}})
	require.ErrorIs(t, err, ErrInvalidRule)
	require.ErrorIs(t, err, model.ErrUnknownCategory)

	_, err = NewClassifier([]Rule{{Category: model.CategoryTravel, Keywords: []string{" ", ""}}})
	require.ErrorIs(t, err, ErrInvalidRule)

	c, err := NewClassifier([]Rule{{Category: model.CategoryTravel, Keywords: []string{"  HOTEL "}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"hotel"}, c.Rules()[0].Keywords)
}

func TestClassifier_UpdateRules(t *testing.T) {
	c := NewDefaultClassifier()
	require.NoError(t, c.UpdateRules([]Rule{{Category: model.CategoryHealthcare, Keywords: []string{"coffee"}}}))
	assert.Equal(t, model.CategoryHealthcare, c.Classify("coffee"))
	assert.Equal(t, model.CategoryOther, c.Classify("uber"))

	err := c.UpdateRules([]Rule{{Category: "bogus", Keywords: []string{"x"}}})
	require.Error(t, err)
	assert.Equal(t, model.CategoryHealthcare, c.Classify("coffee"), "failed update keeps previous table")
}

func TestClassifier_ConcurrentUse(t *testing.T) {
	c := NewDefaultClassifier()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Classify("coffee")
		}()
		go func() {
			defer wg.Done()
			_ = c.UpdateRules(DefaultRules())
		}()
	}
	wg.Wait()

	assert.Equal(t, model.CategoryFood, c.Classify("coffee"))
}
