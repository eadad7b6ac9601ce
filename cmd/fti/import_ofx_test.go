package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fti/internal/classification"
	"github.com/Veraticus/fti/internal/ofx"
	"github.com/Veraticus/fti/internal/testutil"
)

const cardStatement = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestParser() *ofx.Parser {
	return ofx.NewParser(classification.NewDefaultClassifier(),
		ofx.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.qfx", cardStatement)
	b := writeFile(t, dir, "b.qfx", cardStatement)
	writeFile(t, dir, "notes.txt", "not a statement")

	tests := []struct {
		name     string
		patterns []string
		want     []string
		wantErr  bool
	}{
		{
			name:     "glob",
			patterns: []string{filepath.Join(dir, "*.qfx")},
			want:     []string{a, b},
		},
		{
			name:     "literal path",
			patterns: []string{b},
			want:     []string{b},
		},
		{
			name:     "overlapping patterns are deduplicated",
			patterns: []string{filepath.Join(dir, "*.qfx"), a},
			want:     []string{a, b},
		},
		{
			name:     "nothing matches",
			patterns: []string{filepath.Join(dir, "*.ofx")},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collectFiles(tt.patterns)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "card.qfx", cardStatement)
	bad := writeFile(t, dir, "broken.qfx", "not ofx at all")

	txns := parseFiles(context.Background(), newTestParser(), []string{bad, good, filepath.Join(dir, "missing.qfx")}, "alice")

	require.Len(t, txns, 2)
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", txns[0].Description, "sorted by date")
	assert.Equal(t, "NETFLIX.COM", txns[1].Description)
	for _, txn := range txns {
		assert.Equal(t, "alice", txn.UserID)
	}
}

func TestImportTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "card.qfx", cardStatement)
	txns := parseFiles(ctx, newTestParser(), []string{path}, "alice")
	require.Len(t, txns, 2)

	ticks := 0
	first := importTransactions(ctx, db.Storage, nil, txns, func() { ticks++ })
	assert.Equal(t, importSummary{Imported: 2}, first)
	assert.Equal(t, 2, ticks)

	second := importTransactions(ctx, db.Storage, nil, txns, nil)
	assert.Equal(t, importSummary{Duplicates: 2}, second)

	recent, err := db.Storage.GetRecentTransactions(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestImportTransactions_Canceled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	path := writeFile(t, t.TempDir(), "card.qfx", cardStatement)
	txns := parseFiles(context.Background(), newTestParser(), []string{path}, "alice")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := importTransactions(ctx, db.Storage, nil, txns, nil)
	assert.Equal(t, importSummary{}, summary)
}

func TestWritePreview(t *testing.T) {
	path := writeFile(t, t.TempDir(), "card.qfx", cardStatement)
	txns := parseFiles(context.Background(), newTestParser(), []string{path}, "alice")

	var buf bytes.Buffer
	writePreview(&buf, txns)

	out := buf.String()
	assert.Contains(t, out, "Import preview")
	assert.Contains(t, out, "2 transactions from 2024-01-10 to 2024-01-15")
	assert.Contains(t, out, "-45.99")
	assert.Contains(t, out, "Entertainment")
}

func TestRenderSummary(t *testing.T) {
	tests := []struct {
		name        string
		want        string
		notExpected string
		summary     importSummary
	}{
		{
			name:        "clean import",
			summary:     importSummary{Imported: 4, Duplicates: 1},
			want:        "All transactions saved",
			notExpected: "could not be saved",
		},
		{
			name:        "failures",
			summary:     importSummary{Imported: 2, Failed: 3},
			want:        "3 transactions could not be saved",
			notExpected: "All transactions saved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := renderSummary(tt.summary)
			assert.Contains(t, out, "Import complete")
			assert.Contains(t, out, tt.want)
			assert.NotContains(t, out, tt.notExpected)
		})
	}
}
