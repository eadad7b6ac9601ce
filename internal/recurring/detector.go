// Package recurring finds transactions that repeat within a detection window.
package recurring

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fti/internal/model"
)

// ErrUnknownMode is returned for detection modes other than strict and loose.
var ErrUnknownMode = errors.New("unknown recurring detection mode")

// Mode selects how transactions are grouped.
type Mode string

const (
	// ModeStrict groups current-month expenses by description and amount.
	ModeStrict Mode = "strict"
	// ModeLoose groups every transaction of the lookback window by description only.
	ModeLoose Mode = "loose"
)

// DefaultLookback is the loose mode window.
const DefaultLookback = 90 * 24 * time.Hour

// minOccurrences is how many times a key must appear to count as recurring.
const minOccurrences = 2

// ParseMode validates a mode name. The empty string selects ModeStrict.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStrict:
		return ModeStrict, nil
	case ModeLoose:
		return ModeLoose, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Group is one recurring pairing and how often it occurred.
type Group struct {
	Description string
	Amount      decimal.Decimal // zero in loose mode
	Count       int
}

// Detector counts recurring groups.
type Detector struct {
	loc      *time.Location
	mode     Mode
	lookback time.Duration
}

// Option configures a Detector.
type Option func(*Detector)

// WithLocation sets the location used for calendar month boundaries.
func WithLocation(loc *time.Location) Option {
	return func(d *Detector) {
		if loc != nil {
			d.loc = loc
		}
	}
}

// WithLookback overrides the loose mode window.
func WithLookback(lookback time.Duration) Option {
	return func(d *Detector) {
		if lookback > 0 {
			d.lookback = lookback
		}
	}
}

// NewDetector creates a detector for mode.
func NewDetector(mode Mode, opts ...Option) *Detector {
	if mode == "" {
		mode = ModeStrict
	}
	d := &Detector{mode: mode, loc: time.UTC, lookback: DefaultLookback}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Mode returns the grouping policy in use.
func (d *Detector) Mode() Mode {
	return d.mode
}

// Window returns the slice of the ledger the detector inspects at now.
func (d *Detector) Window(now time.Time) model.Window {
	if d.mode == ModeLoose {
		return model.Window{Start: now.Add(-d.lookback), End: now}
	}
	return model.MonthOf(now.In(d.loc)).Window(d.loc)
}

// Count returns the number of recurring groups among txns at now.
func (d *Detector) Count(txns []model.Transaction, now time.Time) int {
	return len(d.Groups(txns, now))
}

// Groups returns the recurring groups among txns at now, most frequent first.
func (d *Detector) Groups(txns []model.Transaction, now time.Time) []Group {
	window := d.Window(now)

	counts := make(map[string]*Group)
	order := make([]string, 0)

	for _, txn := range txns {
		if !d.eligible(txn, window) {
			continue
		}

		key, group := d.key(txn)
		if existing, ok := counts[key]; ok {
			existing.Count++
			continue
		}
		group.Count = 1
		counts[key] = &group
		order = append(order, key)
	}

	groups := make([]Group, 0)
	for _, key := range order {
		if g := counts[key]; g.Count >= minOccurrences {
			groups = append(groups, *g)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})

	return groups
}

// Occurrences returns how many transactions in txns share txn's group at now,
// counting txn itself when it is in the window.
func (d *Detector) Occurrences(txns []model.Transaction, txn model.Transaction, now time.Time) int {
	window := d.Window(now)
	if !d.eligible(txn, window) {
		return 0
	}

	target, _ := d.key(txn)
	count := 0
	for _, other := range txns {
		if !d.eligible(other, window) {
			continue
		}
		if key, _ := d.key(other); key == target {
			count++
		}
	}
	return count
}

func (d *Detector) eligible(txn model.Transaction, window model.Window) bool {
	if d.mode == ModeStrict && txn.Kind != model.KindExpense {
		return false
	}
	return window.Contains(txn.Date)
}

func (d *Detector) key(txn model.Transaction) (string, Group) {
	desc := NormalizeDescription(txn.Description)
	if d.mode == ModeLoose {
		return desc, Group{Description: desc}
	}
	amount := txn.Amount.Round(2)
	return desc + "\x00" + amount.StringFixed(2), Group{Description: desc, Amount: amount}
}

// NormalizeDescription trims and lowercases a description for grouping.
func NormalizeDescription(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
