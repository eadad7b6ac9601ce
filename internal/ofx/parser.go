// Package ofx imports bank and credit card statements in OFX/QFX format into ledger
// transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/fti/internal/classification"
	"github.com/Veraticus/fti/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser converts OFX statements into transactions for one user.
type Parser struct {
	classifier *classification.Classifier
	logger     *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for skipped statements.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewParser creates a parser that categorizes transactions with classifier.
func NewParser(classifier *classification.Classifier, opts ...Option) *Parser {
	p := &Parser{
		classifier: classifier,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML exports sometimes drop the closing bracket of a bare opening tag
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file and returns its transactions owned by userID.
// Debits become expenses and credits income; amounts are stored unsigned.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader, userID string) ([]model.Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: missing user", model.ErrInvalidTransaction)
	}

	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var (
		transactions       []model.Transaction
		bankStmts, ccStmts int
	)

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		bankStmts++
		if stmt.BankTranList == nil {
			continue
		}
		accountID := string(stmt.BankAcctFrom.AcctID)
		for _, ofxTx := range stmt.BankTranList.Transactions {
			tx, err := p.convertTransaction(ofxTx, userID, accountID)
			if err != nil {
				p.logger.WarnContext(ctx, "Skipping OFX transaction", "account", accountID, "fitid", string(ofxTx.FiTID), "error", err)
				continue
			}
			transactions = append(transactions, tx)
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		ccStmts++
		if stmt.BankTranList == nil {
			continue
		}
		accountID := string(stmt.CCAcctFrom.AcctID)
		for _, ofxTx := range stmt.BankTranList.Transactions {
			tx, err := p.convertTransaction(ofxTx, userID, accountID)
			if err != nil {
				p.logger.WarnContext(ctx, "Skipping OFX transaction", "account", accountID, "fitid", string(ofxTx.FiTID), "error", err)
				continue
			}
			transactions = append(transactions, tx)
		}
	}

	p.logger.InfoContext(ctx, "Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

// convertTransaction maps one statement line onto the ledger model. The ID is derived
// from the user, account and FITID so importing the same file twice yields duplicates
// the store rejects.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, userID, accountID string) (model.Transaction, error) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(2))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount: %w", err)
	}

	kind := model.KindExpense
	if amount.IsPositive() {
		kind = model.KindIncome
	}

	description := p.extractMerchantName(ofxTx)
	if description == "" {
		description = strings.TrimSpace(fmt.Sprintf("%v", ofxTx.TrnType))
	}

	category := p.classifier.Classify(description)
	switch {
	case ofxTx.TrnType == ofxgo.TrnTypeInt || ofxTx.TrnType == ofxgo.TrnTypeDiv:
		category = model.CategoryInvestment
	case kind == model.KindIncome && category == model.CategoryOther:
		category = model.CategoryIncome
	}

	tx := model.Transaction{
		ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(userID+"|"+accountID+"|"+string(ofxTx.FiTID))).String(),
		UserID:      userID,
		Description: description,
		Category:    category,
		Kind:        kind,
		Amount:      amount.Abs(),
		Date:        ofxTx.DtPosted.Time,
	}
	return tx, tx.Validate()
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)

	// MEMO often carries the merchant when NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " dates
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(strings.TrimSpace(name))
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			accounts = append(accounts, id)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(string(stmt.CCAcctFrom.AcctID))
		}
	}

	return accounts, nil
}
