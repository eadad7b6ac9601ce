package recurring

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fti/internal/model"
)

var now = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func txn(desc string, amount string, kind model.Kind, date time.Time) model.Transaction {
	return model.Transaction{
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Kind:        kind,
		Date:        date,
	}
}

func TestDetector_Strict(t *testing.T) {
	thisMonth := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		txns []model.Transaction
		want int
	}{
		{
			name: "same description and amount twice",
			txns: []model.Transaction{
				txn("Netflix", "35.00", model.KindExpense, thisMonth),
				txn("Netflix", "35.00", model.KindExpense, thisMonth.AddDate(0, 0, 7)),
			},
			want: 1,
		},
		{
			name: "different amount does not join the group",
			txns: []model.Transaction{
				txn("Netflix", "35.00", model.KindExpense, thisMonth),
				txn("Netflix", "35.00", model.KindExpense, thisMonth),
				txn("Netflix", "36.00", model.KindExpense, thisMonth),
			},
			want: 1,
		},
		{
			name: "description normalized",
			txns: []model.Transaction{
				txn("  NETFLIX ", "35", model.KindExpense, thisMonth),
				txn("netflix", "35.004", model.KindExpense, thisMonth),
			},
			want: 1,
		},
		{
			name: "income ignored",
			txns: []model.Transaction{
				txn("Salary", "3000", model.KindIncome, thisMonth),
				txn("Salary", "3000", model.KindIncome, thisMonth),
			},
			want: 0,
		},
		{
			name: "previous month ignored",
			txns: []model.Transaction{
				txn("Gym", "50", model.KindExpense, lastMonth),
				txn("Gym", "50", model.KindExpense, thisMonth),
			},
			want: 0,
		},
		{
			name: "two groups",
			txns: []model.Transaction{
				txn("Gym", "50", model.KindExpense, thisMonth),
				txn("Gym", "50", model.KindExpense, thisMonth),
				txn("Spotify", "9.99", model.KindExpense, thisMonth),
				txn("Spotify", "9.99", model.KindExpense, thisMonth),
				txn("Spotify", "9.99", model.KindExpense, thisMonth),
			},
			want: 2,
		},
		{
			name: "empty",
			want: 0,
		},
	}

	d := NewDetector(ModeStrict)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Count(tt.txns, now))
		})
	}
}

func TestDetector_StrictGroupsOrderedByCount(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txns := []model.Transaction{
		txn("Gym", "50", model.KindExpense, day),
		txn("Gym", "50", model.KindExpense, day),
		txn("Spotify", "9.99", model.KindExpense, day),
		txn("Spotify", "9.99", model.KindExpense, day),
		txn("Spotify", "9.99", model.KindExpense, day),
	}

	groups := NewDetector(ModeStrict).Groups(txns, now)
	require.Len(t, groups, 2)
	assert.Equal(t, "spotify", groups[0].Description)
	assert.Equal(t, 3, groups[0].Count)
	assert.True(t, decimal.RequireFromString("9.99").Equal(groups[0].Amount))
	assert.Equal(t, "gym", groups[1].Description)
}

func TestDetector_Loose(t *testing.T) {
	txns := []model.Transaction{
		txn("Netflix", "35", model.KindExpense, now.AddDate(0, 0, -60)),
		txn("netflix", "36", model.KindExpense, now.AddDate(0, 0, -30)),
		txn("Salary", "3000", model.KindIncome, now.AddDate(0, 0, -45)),
		txn("Salary", "3100", model.KindIncome, now.AddDate(0, 0, -15)),
		txn("Rent", "1200", model.KindExpense, now.AddDate(0, 0, -120)),
		txn("Rent", "1200", model.KindExpense, now.AddDate(0, 0, -10)),
	}

	d := NewDetector(ModeLoose)
	assert.Equal(t, 2, d.Count(txns, now), "netflix and salary recur; first rent is outside 90 days")

	short := NewDetector(ModeLoose, WithLookback(20*24*time.Hour))
	assert.Equal(t, 0, short.Count(txns, now))
}

func TestDetector_Window(t *testing.T) {
	strict := NewDetector(ModeStrict).Window(now)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), strict.Start)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), strict.End)

	loose := NewDetector(ModeLoose).Window(now)
	assert.Equal(t, now.Add(-DefaultLookback), loose.Start)
	assert.Equal(t, now, loose.End)

	berlin, err := time.LoadLocation("Europe/Berlin")
	if err == nil {
		w := NewDetector(ModeStrict, WithLocation(berlin)).Window(now)
		assert.Equal(t, berlin, w.Start.Location())
	}
}

func TestDetector_Occurrences(t *testing.T) {
	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	first := txn("Netflix", "35", model.KindExpense, day)
	second := txn("Netflix", "35", model.KindExpense, day.AddDate(0, 0, 1))
	d := NewDetector(ModeStrict)

	assert.Equal(t, 1, d.Occurrences([]model.Transaction{first}, first, now))
	assert.Equal(t, 2, d.Occurrences([]model.Transaction{first, second}, second, now))
	assert.Equal(t, 0, d.Occurrences([]model.Transaction{first}, txn("Netflix", "35", model.KindIncome, day), now))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeStrict, m)

	m, err = ParseMode("LOOSE")
	require.NoError(t, err)
	assert.Equal(t, ModeLoose, m)

	_, err = ParseMode("fuzzy")
	assert.ErrorIs(t, err, ErrUnknownMode)
}
