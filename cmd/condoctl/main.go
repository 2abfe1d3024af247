// condoctl is the operator CLI: it drives the payment, expense, banking
// and reporting services against the production database directly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	bankingapp "github.com/condo/backend/internal/application/banking"
	billingapp "github.com/condo/backend/internal/application/billing"
	reportapp "github.com/condo/backend/internal/application/report"
	"github.com/condo/backend/internal/domain/banking"
	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/cache"
	"github.com/condo/backend/internal/infrastructure/config"
	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/condo/backend/internal/infrastructure/notification"
	"github.com/condo/backend/internal/infrastructure/persistence"
)

const dateLayout = "2006-01-02"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	app, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.close()

	ctx := context.Background()

	switch command {
	case "accrue":
		err = app.runAccrue(ctx)
	case "extra-collection":
		err = app.runExtraCollection(ctx)
	case "late-fees":
		err = app.runLateFees(ctx)
	case "record-payment":
		err = app.runRecordPayment(ctx)
	case "reverse-payment":
		err = app.runReversePayment(ctx)
	case "create-expense":
		err = app.runCreateExpense(ctx)
	case "cancel-expense":
		err = app.runCancelExpense(ctx)
	case "transfer":
		err = app.runTransfer(ctx)
	case "balance":
		err = app.runBalance(ctx)
	case "account":
		err = app.runAccount(ctx)
	case "obligations":
		err = app.runObligations(ctx)
	case "payments":
		err = app.runPayments(ctx)
	case "reconcile":
		err = app.runReconcile(ctx)
	case "report":
		err = app.runReport(ctx)
	case "yearly":
		err = app.runYearly(ctx)
	case "verify":
		err = app.runVerify(ctx)
	case "debtors":
		err = app.runDebtors(ctx)
	case "receipt":
		err = app.runReceipt(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Condo Operator CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  condoctl <command> [options]")
	fmt.Println("\nBilling:")
	fmt.Println("  accrue           Create the monthly dues obligations for a site")
	fmt.Println("  extra-collection Split an extra collection across the site's apartments")
	fmt.Println("  late-fees        Apply late fees to a site's overdue obligations")
	fmt.Println("  record-payment   Record a payment, optionally against an obligation")
	fmt.Println("  reverse-payment  Reverse a payment and roll back its effects")
	fmt.Println("  obligations      List a site's obligations")
	fmt.Println("  payments         List a site's payments")
	fmt.Println("\nBanking:")
	fmt.Println("  create-expense   Record an expense; deducts immediately when due")
	fmt.Println("  cancel-expense   Cancel an expense that has not been deducted")
	fmt.Println("  transfer         Move money between two accounts of a site")
	fmt.Println("  balance          Print an account's replayed effective balance")
	fmt.Println("  account          Show an account with its paged transaction history")
	fmt.Println("  reconcile        Anchor an account's opening balance to a bank statement")
	fmt.Println("\nReporting:")
	fmt.Println("  report           Print a monthly report, optionally export XLSX/PDF")
	fmt.Println("  yearly           Print the yearly report")
	fmt.Println("  verify           Independent cash check over a date window")
	fmt.Println("  debtors          List apartments with outstanding debt")
	fmt.Println("  receipt          Export a payment's receipt as PDF")
	fmt.Println("\nRun 'condoctl <command> -h' for the options of a command.")
}

// app bundles the wired services behind the CLI commands
type app struct {
	log       *zap.Logger
	db        *persistence.Database
	snapshots cache.BalanceSnapshotStore

	siteRepo      *persistence.GormSiteRepository
	apartmentRepo *persistence.GormApartmentRepository
	paymentRepo   *persistence.GormPaymentRepository
	receiptRepo   *persistence.GormReceiptRepository

	accrual    *billingapp.AccrualService
	lateFees   *billingapp.LateFeeService
	payments   *billingapp.PaymentService
	reconciler *bankingapp.ReconcilerService
	expenses   *bankingapp.ExpenseService
	reports    *reportapp.ReportService
	debtors    *reportapp.DebtorService
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	// CLI output goes to stdout; keep the log quiet unless things go wrong.
	log, err := logger.New(&logger.Config{Level: "warn", Format: cfg.Log.Format, Output: "stderr"})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Without redis the report cache and its invalidation are skipped;
	// every command still computes correct results from the ledgers.
	var snapshots cache.BalanceSnapshotStore
	redisSnapshots, err := cache.NewRedisBalanceSnapshotStore(cache.RedisConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, balance snapshot cache disabled", zap.Error(err))
	} else {
		snapshots = redisSnapshots
	}

	siteRepo := persistence.NewGormSiteRepository(db.DB)
	apartmentRepo := persistence.NewGormApartmentRepository(db.DB)
	obligationRepo := persistence.NewGormObligationRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	accountRepo := persistence.NewGormBankAccountRepository(db.DB)
	ledgerRepo := persistence.NewGormBankTransactionRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	expenseTypeRepo := persistence.NewGormExpenseTypeRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	var notifier notification.Notifier = notification.NoopNotifier{}
	if cfg.Notification.Enabled {
		notifier = notification.NewSMTPNotifier(notification.SMTPConfig{
			Host:        cfg.Notification.SMTPHost,
			Port:        cfg.Notification.SMTPPort,
			Username:    cfg.Notification.SMTPUsername,
			Password:    cfg.Notification.SMTPPassword,
			FromAddress: cfg.Notification.FromAddress,
		}, log)
	}

	reconciler := bankingapp.NewReconcilerService(
		siteRepo, accountRepo, ledgerRepo, paymentRepo, expenseRepo, txManager, notifier)

	return &app{
		log:           log,
		db:            db,
		snapshots:     snapshots,
		siteRepo:      siteRepo,
		apartmentRepo: apartmentRepo,
		paymentRepo:   paymentRepo,
		receiptRepo:   receiptRepo,
		accrual:       billingapp.NewAccrualService(siteRepo, apartmentRepo, obligationRepo),
		lateFees:      billingapp.NewLateFeeService(siteRepo, obligationRepo),
		payments: billingapp.NewPaymentService(
			paymentRepo, obligationRepo, receiptRepo, accountRepo, ledgerRepo, txManager, snapshots),
		reconciler: reconciler,
		expenses: bankingapp.NewExpenseService(
			expenseRepo, expenseTypeRepo, ledgerRepo, reconciler, snapshots),
		reports: reportapp.NewReportService(
			apartmentRepo, obligationRepo, paymentRepo, expenseRepo, expenseTypeRepo, snapshots),
		debtors: reportapp.NewDebtorService(apartmentRepo, obligationRepo),
	}, nil
}

func (a *app) close() {
	if a.snapshots != nil {
		if err := a.snapshots.Close(); err != nil {
			a.log.Error("Error closing balance snapshot store", zap.Error(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.log.Error("Error closing database", zap.Error(err))
	}
	_ = logger.Sync(a.log)
}

func (a *app) runAccrue(ctx context.Context) error {
	fs := flag.NewFlagSet("accrue", flag.ExitOnError)
	siteID := fs.String("site", "", "Site ID")
	year := fs.Int("year", 0, "Year")
	month := fs.Int("month", 0, "Month (1-12)")
	_ = fs.Parse(os.Args[2:])

	sid, err := parseID(*siteID, "site")
	if err != nil {
		return err
	}
	created, err := a.accrual.EnsureMonthlyDues(ctx, sid, *year, *month)
	if err != nil {
		return err
	}
	fmt.Printf("Created %d dues obligations for %04d-%02d\n", created, *year, *month)
	return nil
}

func (a *app) runExtraCollection(ctx context.Context) error {
	fs := flag.NewFlagSet("extra-collection", flag.ExitOnError)
	siteID := fs.String("site", "", "Site ID")
	year := fs.Int("year", 0, "Year")
	month := fs.Int("month", 0, "Month (1-12)")
	amount := fs.String("amount", "", "Total amount to split across apartments")
	description := fs.String("description", "", "Collection description")
	_ = fs.Parse(os.Args[2:])

	sid, err := parseID(*siteID, "site")
	if err != nil {
		return err
	}
	total, err := parseAmount(*amount)
	if err != nil {
		return err
	}
	created, err := a.accrual.CreateExtraCollection(ctx, billingapp.ExtraCollectionRequest{
		SiteID:      sid,
		Year:        *year,
		Month:       *month,
		TotalAmount: total,
		Description: *description,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created %d extra collection obligations\n", created)
	return nil
}

func (a *app) runLateFees(ctx context.Context) error {
	fs := flag.NewFlagSet("late-fees", flag.ExitOnError)
	siteID := fs.String("site", "", "Site ID")
	asOf := fs.String("as-of", "", "Reference date (YYYY-MM-DD, default today)")
	_ = fs.Parse(os.Args[2:])

	sid, err := parseID(*siteID, "site")
	if err != nil {
		return err
	}
	day, err := parseDate(*asOf, time.Now())
	if err != nil {
		return err
	}
	applied, err := a.lateFees.ApplyLateFees(ctx, sid, day)
	if err != nil {
		return err
	}
	fmt.Printf("Applied %d late fees\n", applied)
	return nil
}

func (a *app) runRecordPayment(ctx context.Context) error {
	fs := flag.NewFlagSet("record-payment", flag.ExitOnError)
	siteID := fs.String("site", "", "Site ID")
	apartmentID := fs.String("apartment", "", "Apartment ID")
	amount := fs.String("amount", "", "Payment amount")
	date := fs.String("date", "", "Payment date (YYYY-MM-DD, default today)")
	method := fs.String("method", string(billing.PaymentMethodBankTransfer), "CASH, BANK_TRANSFER, CREDIT_CARD, CHECK or OTHER")
	obligationID := fs.String("obligation", "", "Obligation to apply the payment to (optional)")
	accountID := fs.String("account", "", "Bank account to route the payment to (optional)")
	description := fs.String("description", "", "Payment description")
	receipt := fs.Bool("receipt", true, "Issue a receipt")
	_ = fs.Parse(os.Args[2:])

	sid, err := parseID(*siteID, "site")
	if err != nil {
		return err
	}
	aid, err := parseID(*apartmentID, "apartment")
	if err != nil {
		return err
	}
	amt, err := parseAmount(*amount)
	if err != nil {
		return err
	}
	day, err := parseDate(*date, time.Now())
	if err != nil {
		return err
	}

	req := billingapp.RecordPaymentRequest{
		SiteID:       sid,
		ApartmentID:  aid,
		Amount:       amt,
		PaymentDate:  day,
		Method:       billing.PaymentMethod(*method),
		Description:  *description,
		IssueReceipt: *receipt,
	}
	if *obligationID != "" {
		oid, err := parseID(*obligationID, "obligation")
		if err != nil {
			return err
		}
		req.ObligationID = &oid
	}
	if *accountID != "" {
		bid, err := parseID(*accountID, "account")
		if err != nil {
			return err
		}
		req.BankAccountID = &bid
	}

	result, err := a.payments.RecordPayment(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("Payment %s recorded\n", result.PaymentID)
	if result.ObligationStatus != "" {
		fmt.Printf("  obligation: %s, remaining %s\n", result.ObligationStatus, result.Remaining.StringFixed(2))
	}
	if result.BalanceAfter != nil {
		fmt.Printf("  account balance: %s\n", result.BalanceAfter.StringFixed(2))
	}
	if result.ReceiptNumber != "" {
		fmt.Printf("  receipt: %s\n", result.ReceiptNumber)
	}
	return nil
}

func (a *app) runReversePayment(ctx context.Context) error {
	fs := flag.NewFlagSet("reverse-payment", flag.ExitOnError)
	paymentID := fs.String("payment", "", "Payment ID")
	_ = fs.Parse(os.Args[2:])

	pid, err := parseID(*paymentID, "payment")
	if err != nil {
		return err
	}
	if err := a.payments.ReversePayment(ctx, pid); err != nil {
		return err
	}
	fmt.Printf("Payment %s reversed\n", pid)
	return nil
}

func (a *app) runCreateExpense(ctx context.Context) error {
	fs := flag.NewFlagSet("create-expense", flag.ExitOnError)
	siteID := fs.String("site", "", "Site ID")
	typeID := fs.String("type", "", "Expense type ID")
	amount := fs.String("amount", "", "Expense amount")
	description := fs.String("description", "", "Expense description")
	date := fs.String("date", "", "Expense date (YYYY-MM-DD, default today)")
	due := fs.String("due", "", "Due date (YYYY-MM-DD, optional)")
	invoice := fs.String("invoice", "", "Invoice number (optional)")
	_ = fs.Parse(os.Args[2:])

	sid, err := parseID(*siteID, "site")
	if err != nil {
		return err
	}
	tid, err := parseID(*typeID, "type")
	if err != nil {
		return err
	}
	amt, err := parseAmount(*amount)
	if err != nil {
		return err
	}
	day, err := parseDate(*date, time.Now())
	if err != nil {
		return err
	}

	req := bankingapp.CreateExpenseRequest{
		SiteID:        sid,
		ExpenseTypeID: tid,
		Description:   *description,
		Amount:        amt,
		ExpenseDate:   day,
		InvoiceNumber: *invoice,
	}
	if *due != "" {
		dueDate, err := parseDate(*due, time.Time{})
		if err != nil {
			return err
		}
		req.DueDate = &dueDate
	}

	e, err := a.expenses.CreateExpense(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("Expense %s recorded (%s)\n", e.ID, e.Amount.StringFixed(2))
	return nil
}

func (a *app) runCancelExpense(ctx context.Context) error {
	fs := flag.NewFlagSet("cancel-expense", flag.ExitOnError)
	expenseID := fs.String("expense", "", "Expense ID")
	_ = fs.Parse(os.Args[2:])

	eid, err := parseID(*expenseID, "expense")
	if err != nil {
		return err
	}
	if err := a.expenses.CancelExpense(ctx, eid); err != nil {
		return err
	}
	fmt.Printf("Expense %s cancelled\n", eid)
	return nil
}

func (a *app) runTransfer(ctx context.Context) error {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	from := fs.String("from", "", "Source account ID")
	to := fs.String("to", "", "Destination account ID")
	amount := fs.String("amount", "", "Transfer amount")
	date := fs.String("date", "", "Transfer date (YYYY-MM-DD, default today)")
	description := fs.String("description", "", "Transfer description")
	_ = fs.Parse(os.Args[2:])

	fromID, err := parseID(*from, "from")
	if err != nil {
		return err
	}
	toID, err := parseID(*to, "to")
	if err != nil {
		return err
	}
	amt, err := parseAmount(*amount)
	if err != nil {
		return err
	}
	day, err := parseDate(*date, time.Now())
	if err != nil {
		return err
	}

	err = a.reconciler.Transfer(ctx, bankingapp.TransferRequest{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        amt,
		Date:          day,
		Description:   *description,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Transferred %s\n", amt.StringFixed(2))
	return nil
}

func (a *app) runBalance(ctx context.Context) error {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	accountID := fs.String("account", "", "Bank account ID")
	_ = fs.Parse(os.Args[2:])

	aid, err := parseID(*accountID, "account")
	if err != nil {
		return err
	}
	balance, err := a.reconciler.EffectiveBalance(ctx, aid)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", balance.StringFixed(2))

	if err := a.reconciler.VerifyRunningBalance(ctx, aid); err != nil {
		return err
	}
	return nil
}

func (a *app) runAccount(ctx context.Context) error {
	fs := flag.NewFlagSet("account", flag.ExitOnError)
	accountID := fs.String("account", "", "Bank account ID")
	page := fs.Int("page", 1, "Page of the transaction history")
	pageSize := fs.Int("page-size", 20, "Transactions per page")
	_ = fs.Parse(os.Args[2:])

	aid, err := parseID(*accountID, "account")
	if err != nil {
		return err
	}
	detail, err := a.reconciler.GetAccountDetail(ctx, aid, banking.TransactionFilter{
		Filter: shared.Filter{Page: *page, PageSize: *pageSize, OrderBy: "transaction_date", OrderDir: "desc"},
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s %s  effective balance %s\n",
		detail.Account.BankName, detail.Account.AccountName, detail.EffectiveBalance.StringFixed(2))
	for _, tx := range detail.Transactions.Items {
		mark := " "
		if tx.Reversed {
			mark = "R"
		}
		fmt.Printf("%s %s %-10s %12s  %s\n",
			mark, tx.TransactionDate.Format(dateLayout), tx.Kind, tx.Amount.StringFixed(2), tx.Description)
	}
	fmt.Printf("page %d of %d (%d transactions)\n",
		detail.Transactions.Page, detail.Transactions.TotalPages, detail.Transactions.Total)
	return nil
}

func (a *app) runObligations(ctx context.Context) error {
	fs := flag.NewFlagSet("obligations", flag.ExitOnError)
	siteID := fs.String("site", "", "Site ID")
	apartmentID := fs.String("apartment", "", "Restrict to one apartment (optional)")
	year := fs.Int("year", 0, "Restrict to a year (optional)")
	month := fs.Int("month", 0, "Restrict to a month (optional)")
	page := fs.Int("page", 1, "Page")
	pageSize := fs.Int("page-size", 20, "Rows per page")
	_ = fs.Parse(os.Args[2:])

	sid, err := parseID(*siteID, "site")
	if err != nil {
		return err
	}
	filter := billing.ObligationFilter{
		Filter: shared.Filter{Page: *page, PageSize: *pageSize, OrderBy: "due_date", OrderDir: "asc"},
	}
	if *apartmentID != "" {
		aid, err := parseID(*apartmentID, "apartment")
		if err != nil {
			return err
		}
		filter.ApartmentID = &aid
	}
	if *year != 0 {
		filter.Year = year
	}
	if *month != 0 {
		filter.Month = month
	}

	obligations, err := a.payments.ListObligations(ctx, sid, filter)
	if err != nil {
		return err
	}
	for _, o := range obligations {
		fmt.Printf("%s  %04d-%02d %-16s %12s due %s  %-14s remaining %s\n",
			o.ID, o.Year, o.Month, o.Kind, o.TotalDue().StringFixed(2),
			o.DueDate.Format(dateLayout), o.Status, o.Remaining().StringFixed(2))
	}
	return nil
}

func (a *app) runPayments(ctx context.Context) error {
	fs := flag.NewFlagSet("payments", flag.ExitOnError)
	siteID := fs.String("site", "", "Site ID")
	apartmentID := fs.String("apartment", "", "Restrict to one apartment (optional)")
	from := fs.String("from", "", "Window start (YYYY-MM-DD, optional)")
	to := fs.String("to", "", "Window end (YYYY-MM-DD, optional)")
	reversed := fs.Bool("reversed", false, "Include reversed payments")
	page := fs.Int("page", 1, "Page")
	pageSize := fs.Int("page-size", 20, "Rows per page")
	_ = fs.Parse(os.Args[2:])

	sid, err := parseID(*siteID, "site")
	if err != nil {
		return err
	}
	filter := billing.PaymentFilter{
		Filter:          shared.Filter{Page: *page, PageSize: *pageSize, OrderBy: "payment_date", OrderDir: "desc"},
		IncludeReversed: *reversed,
	}
	if *apartmentID != "" {
		aid, err := parseID(*apartmentID, "apartment")
		if err != nil {
			return err
		}
		filter.ApartmentID = &aid
	}
	if *from != "" {
		fromDate, err := parseDate(*from, time.Time{})
		if err != nil {
			return err
		}
		filter.From = &fromDate
	}
	if *to != "" {
		toDate, err := parseDate(*to, time.Time{})
		if err != nil {
			return err
		}
		filter.To = &toDate
	}

	payments, err := a.payments.ListPaymentsBySite(ctx, sid, filter)
	if err != nil {
		return err
	}
	for _, p := range payments {
		mark := " "
		if p.Reversed {
			mark = "R"
		}
		fmt.Printf("%s %s %s %-13s %12s  %s\n",
			mark, p.ID, p.PaymentDate.Format(dateLayout), p.Method, p.Amount.StringFixed(2), p.Description)
	}
	return nil
}

func (a *app) runReconcile(ctx context.Context) error {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	accountID := fs.String("account", "", "Bank account ID")
	statement := fs.String("statement", "", "Balance reported by the bank statement")
	_ = fs.Parse(os.Args[2:])

	aid, err := parseID(*accountID, "account")
	if err != nil {
		return err
	}
	stmt, err := parseAmount(*statement)
	if err != nil {
		return err
	}
	if err := a.reconciler.Reconcile(ctx, aid, stmt); err != nil {
		return err
	}
	fmt.Printf("Account %s reconciled to %s\n", aid, stmt.StringFixed(2))
	return nil
}

func (a *app) runReport(ctx context.Context) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	siteID := fs.String("site", "", "Site ID")
	year := fs.Int("year", 0, "Year")
	month := fs.Int("month", 0, "Month (1-12)")
	xlsxPath := fs.String("xlsx", "", "Write the report as XLSX to this path")
	pdfPath := fs.String("pdf", "", "Write the report as PDF to this path")
	_ = fs.Parse(os.Args[2:])

	sid, err := parseID(*siteID, "site")
	if err != nil {
		return err
	}
	detail, err := a.reports.MonthlyReportDetail(ctx, sid, *year, *month)
	if err != nil {
		return err
	}

	fmt.Printf("Report %04d-%02d\n", detail.Year, detail.Month)
	fmt.Printf("  opening:   %s\n", detail.OpeningBalance.StringFixed(2))
	fmt.Printf("  collected: %s\n", detail.Collected.StringFixed(2))
	fmt.Printf("  pending:   %s\n", detail.PendingAmount.StringFixed(2))
	fmt.Printf("  expenses:  %s\n", detail.ExpenseTotal.StringFixed(2))
	fmt.Printf("  balance:   %s\n", detail.Balance.StringFixed(2))

	if *xlsxPath == "" && *pdfPath == "" {
		return nil
	}

	st, err := a.siteRepo.FindByID(ctx, sid)
	if err != nil {
		return err
	}
	if *xlsxPath != "" {
		data, err := reportapp.BuildMonthlyReportXLSX(st.Name, detail)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*xlsxPath, data, 0644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", *xlsxPath)
	}
	if *pdfPath != "" {
		data, err := reportapp.BuildMonthlyReportPDF(st.Name, detail)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*pdfPath, data, 0644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", *pdfPath)
	}
	return nil
}

func (a *app) runYearly(ctx context.Context) error {
	fs := flag.NewFlagSet("yearly", flag.ExitOnError)
	siteID := fs.String("site", "", "Site ID")
	year := fs.Int("year", 0, "Year")
	_ = fs.Parse(os.Args[2:])

	sid, err := parseID(*siteID, "site")
	if err != nil {
		return err
	}
	report, err := a.reports.YearlyReport(ctx, sid, *year)
	if err != nil {
		return err
	}

	fmt.Printf("Yearly report %d\n", report.Year)
	for _, m := range report.Months {
		fmt.Printf("  %02d  collected %12s  expenses %12s  balance %12s\n",
			m.Month, m.Collected.StringFixed(2), m.ExpenseTotal.StringFixed(2), m.Balance.StringFixed(2))
	}
	fmt.Printf("  total collected %s, total expenses %s, closing %s\n",
		report.Collected.StringFixed(2), report.ExpenseTotal.StringFixed(2), report.ClosingBalance.StringFixed(2))
	return nil
}

func (a *app) runVerify(ctx context.Context) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	siteID := fs.String("site", "", "Site ID")
	from := fs.String("from", "", "Window start (YYYY-MM-DD)")
	to := fs.String("to", "", "Window end (YYYY-MM-DD)")
	_ = fs.Parse(os.Args[2:])

	sid, err := parseID(*siteID, "site")
	if err != nil {
		return err
	}
	fromDate, err := parseDate(*from, time.Time{})
	if err != nil {
		return err
	}
	toDate, err := parseDate(*to, time.Time{})
	if err != nil {
		return err
	}
	net, err := a.reports.PeriodVerification(ctx, sid, fromDate, toDate)
	if err != nil {
		return err
	}
	fmt.Printf("Net cash flow %s to %s: %s\n", *from, *to, net.StringFixed(2))
	return nil
}

func (a *app) runDebtors(ctx context.Context) error {
	fs := flag.NewFlagSet("debtors", flag.ExitOnError)
	siteID := fs.String("site", "", "Site ID")
	asOf := fs.String("as-of", "", "Reference date (YYYY-MM-DD, default today)")
	_ = fs.Parse(os.Args[2:])

	sid, err := parseID(*siteID, "site")
	if err != nil {
		return err
	}
	day, err := parseDate(*asOf, time.Now())
	if err != nil {
		return err
	}
	debtors, err := a.debtors.DebtorList(ctx, sid, day)
	if err != nil {
		return err
	}

	if len(debtors) == 0 {
		fmt.Println("No outstanding debt")
		return nil
	}
	for _, d := range debtors {
		fmt.Printf("%-20s %-24s %12s  %d open, %d days overdue\n",
			d.ApartmentLabel, d.OwnerName, d.Outstanding.StringFixed(2), d.OpenObligations, d.DaysOverdue)
	}
	return nil
}

func (a *app) runReceipt(ctx context.Context) error {
	fs := flag.NewFlagSet("receipt", flag.ExitOnError)
	paymentID := fs.String("payment", "", "Payment ID")
	pdfPath := fs.String("pdf", "receipt.pdf", "Output PDF path")
	_ = fs.Parse(os.Args[2:])

	pid, err := parseID(*paymentID, "payment")
	if err != nil {
		return err
	}
	receipt, err := a.receiptRepo.FindByPayment(ctx, pid)
	if err != nil {
		return err
	}
	st, err := a.siteRepo.FindByID(ctx, receipt.SiteID)
	if err != nil {
		return err
	}

	// The receipt itself does not carry the apartment, the payment does.
	label := ""
	if payment, err := a.paymentRepo.FindByID(ctx, pid); err == nil {
		if apt, err := a.apartmentRepo.FindByID(ctx, payment.ApartmentID); err == nil {
			label = apt.Label()
		}
	}

	data, err := reportapp.BuildReceiptPDF(st.Name, label, receipt)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*pdfPath, data, 0644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", *pdfPath)
	return nil
}

func parseID(value, name string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, fmt.Errorf("-%s is required", name)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid -%s: %w", name, err)
	}
	return id, nil
}

func parseAmount(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, fmt.Errorf("-amount is required")
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return amount, nil
}

func parseDate(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		if fallback.IsZero() {
			return time.Time{}, fmt.Errorf("date is required (format %s)", dateLayout)
		}
		return fallback, nil
	}
	day, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return day, nil
}
