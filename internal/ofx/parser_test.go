package ofx

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fti/internal/classification"
	"github.com/Veraticus/fti/internal/model"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
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
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240130120000[0:GMT]
<TRNAMT>2500.00
<FITID>2024013001
<NAME>ACME CORP PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>INT
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>1.25
<FITID>2024013101
<NAME>MONTHLY CREDIT
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
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
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
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

func newTestParser() *Parser {
	return NewParser(classification.NewDefaultClassifier(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		userID        string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			userID:        "user-1",
			expectedCount: 5,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			userID:        "user-1",
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			userID:        "user-1",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			userID:        "user-1",
			expectedError: true,
		},
		{
			name:          "missing user",
			ofxData:       sampleBankOFX,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := newTestParser()
			reader := strings.NewReader(tt.ofxData)

			transactions, err := parser.ParseFile(context.Background(), reader, tt.userID)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, transactions, tt.expectedCount)
			}
		})
	}
}

func TestParseBankTransactions(t *testing.T) {
	parser := newTestParser()

	transactions, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), "user-1")
	require.NoError(t, err)
	require.Len(t, transactions, 5)

	for _, tx := range transactions {
		assert.Equal(t, "user-1", tx.UserID)
		assert.NoError(t, tx.Validate())
	}

	tx1 := transactions[0]
	assert.Equal(t, "STARBUCKS STORE #1234", tx1.Description)
	assert.Equal(t, model.KindExpense, tx1.Kind)
	assert.Equal(t, "25.5", tx1.Amount.String())
	assert.Equal(t, model.CategoryShopping, tx1.Category)
	assert.Equal(t, 2024, tx1.Date.Year())
	assert.Equal(t, time.January, tx1.Date.Month())
	assert.Equal(t, 15, tx1.Date.Day())

	tx2 := transactions[1]
	assert.Equal(t, "Whole Foods Market", tx2.Description)
	assert.Equal(t, model.CategoryFood, tx2.Category)
	assert.Equal(t, "125", tx2.Amount.String())

	tx3 := transactions[2]
	assert.Equal(t, "CHECK #1234", tx3.Description)
	assert.Equal(t, model.CategoryOther, tx3.Category)
	assert.Equal(t, "500", tx3.Amount.String())

	payroll := transactions[3]
	assert.Equal(t, model.KindIncome, payroll.Kind)
	assert.Equal(t, model.CategoryIncome, payroll.Category)
	assert.Equal(t, "2500", payroll.Amount.String())

	interest := transactions[4]
	assert.Equal(t, model.KindIncome, interest.Kind)
	assert.Equal(t, model.CategoryInvestment, interest.Category)
}

func TestParseCreditCardTransactions(t *testing.T) {
	parser := newTestParser()

	transactions, err := parser.ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX), "user-1")
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	tx1 := transactions[0]
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", tx1.Description)
	assert.Equal(t, "45.99", tx1.Amount.String())
	assert.Equal(t, model.CategoryShopping, tx1.Category)

	tx2 := transactions[1]
	assert.Equal(t, "NETFLIX.COM", tx2.Description)
	assert.Equal(t, "15", tx2.Amount.String())
	assert.Equal(t, model.CategoryEntertainment, tx2.Category)
}

func TestExtractMerchantName(t *testing.T) {
	parser := newTestParser()

	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "remove POS prefix",
			tx:       ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"},
			expected: "STARBUCKS",
		},
		{
			name:     "remove DEBIT CARD prefix",
			tx:       ofxgo.Transaction{Name: "DEBIT CARD PURCHASE WHOLE FOODS"},
			expected: "WHOLE FOODS",
		},
		{
			name:     "keep clean name",
			tx:       ofxgo.Transaction{Name: "NETFLIX.COM"},
			expected: "NETFLIX.COM",
		},
		{
			name:     "trim whitespace",
			tx:       ofxgo.Transaction{Name: "  AMAZON.COM  "},
			expected: "AMAZON.COM",
		},
		{
			name:     "strip leading date",
			tx:       ofxgo.Transaction{Name: "03/14 SHELL OIL"},
			expected: "SHELL OIL",
		},
		{
			name:     "generic name falls back to memo",
			tx:       ofxgo.Transaction{Name: "PURCHASE", Memo: "CORNER BAKERY"},
			expected: "CORNER BAKERY",
		},
		{
			name:     "payee wins",
			tx:       ofxgo.Transaction{Name: "POS PURCHASE 123", Payee: &ofxgo.Payee{Name: "Local Cafe"}},
			expected: "Local Cafe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.extractMerchantName(tt.tx))
		})
	}
}

func TestTransactionIDsAreStable(t *testing.T) {
	parser := newTestParser()

	first, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), "user-1")
	require.NoError(t, err)
	again, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), "user-1")
	require.NoError(t, err)
	other, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), "user-2")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := range first {
		assert.Equal(t, first[i].ID, again[i].ID)
		assert.NotEqual(t, first[i].ID, other[i].ID)
		assert.False(t, seen[first[i].ID], "duplicate ID %s", first[i].ID)
		seen[first[i].ID] = true
	}
}

func TestGetAccounts(t *testing.T) {
	parser := newTestParser()

	accounts, err := parser.GetAccounts(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567890"}, accounts)

	accounts, err = parser.GetAccounts(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"4111111111111111"}, accounts)
}
