package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/spice-report/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// opening tag alone on a line with its closing bracket missing
	unclosedTagPattern = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// categories for the few transaction types OFX can tell us about.
var typeCategories = map[string]string{
	"INT":    "Interest",
	"DIV":    "Dividends",
	"FEE":    "Fees",
	"SRVCHG": "Fees",
	"ATM":    "Cash",
}

// OFXParser converts OFX/QFX statements into ledger transactions.
type OFXParser struct {
	logger *slog.Logger
}

// NewOFXParser creates an OFXParser.
func NewOFXParser(logger *slog.Logger) *OFXParser {
	return &OFXParser{logger: logger}
}

// ParseFile parses every bank and credit card statement in the stream.
func (p *OFXParser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		currency := stmt.CurDef.String()
		for _, tx := range stmt.BankTranList.Transactions {
			transactions = append(transactions, convert(tx, nil, currency))
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		card := maskCard(string(stmt.CCAcctFrom.AcctID))
		currency := stmt.CurDef.String()
		for _, tx := range stmt.BankTranList.Transactions {
			transactions = append(transactions, convert(tx, card, currency))
		}
	}

	p.logger.Info("parsed OFX file",
		"transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return unclosedTagPattern.ReplaceAllString(content, "$1>")
}

func convert(tx ofxgo.Transaction, card *string, currency string) model.Transaction {
	posted := tx.DtPosted.UTC()
	paid := posted
	if tx.DtUser != nil && !tx.DtUser.IsZero() {
		paid = tx.DtUser.UTC()
	}

	txn := model.Transaction{
		OperationDate: posted.Format(model.OperationDateLayout),
		PaymentDate:   paid.Format(model.PaymentDateLayout),
		CardNumber:    card,
		Status:        "OK",
		Currency:      currency,
		Category:      typeCategories[tx.TrnType.String()],
	}

	if amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2)); err == nil {
		txn.Amount = decimal.NewNullDecimal(amount)
	}
	if tx.SIC != 0 {
		txn.MCC = fmt.Sprintf("%04d", tx.SIC)
	}
	if name := merchantName(tx); name != "" {
		txn.Description = &name
	}

	return txn
}

// maskCard renders an account number the way the bank export does: "*" and the last four digits.
func maskCard(accountID string) *string {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil
	}
	if len(accountID) > 4 {
		accountID = accountID[len(accountID)-4:]
	}
	masked := "*" + accountID
	return &masked
}

func merchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericNames[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// leading "MM/DD " stamp
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}
