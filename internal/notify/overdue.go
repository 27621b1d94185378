package notify

import (
	"context"
	"log"
	"time"

	"lendingapi/internal/loan"
)

// LoanSource yields the loans that are currently overdue.
type LoanSource interface {
	Overdue(ctx context.Context) ([]loan.Loan, error)
}

// OverdueNotifier periodically mails a reminder to every customer holding an
// overdue loan. It only reads; returning books stays a caller-driven workflow.
type OverdueNotifier struct {
	loans    LoanSource
	mailer   Mailer
	interval time.Duration
	subject  string
	message  string
}

func NewOverdueNotifier(loans LoanSource, mailer Mailer, interval time.Duration, subject, message string) *OverdueNotifier {
	return &OverdueNotifier{
		loans:    loans,
		mailer:   mailer,
		interval: interval,
		subject:  subject,
		message:  message,
	}
}

// Run blocks until ctx is done, notifying on every tick. Failures are logged
// and retried on the next tick rather than propagated.
func (n *OverdueNotifier) Run(ctx context.Context) {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := n.Notify(ctx); err != nil {
				log.Printf("overdue notification failed: %v", err)
			}
		}
	}
}

// Notify fetches the overdue loans and sends one reminder per distinct
// customer email. A run with no overdue loans sends nothing.
func (n *OverdueNotifier) Notify(ctx context.Context) error {
	overdue, err := n.loans.Overdue(ctx)
	if err != nil {
		return err
	}
	if len(overdue) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var recipients []string
	for _, l := range overdue {
		if l.CustomerEmail == "" || seen[l.CustomerEmail] {
			continue
		}
		seen[l.CustomerEmail] = true
		recipients = append(recipients, l.CustomerEmail)
	}
	if len(recipients) == 0 {
		return nil
	}

	log.Printf("notifying %d customers about %d overdue loans", len(recipients), len(overdue))
	return n.mailer.Send(recipients, n.subject, n.message)
}
