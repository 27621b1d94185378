package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lendingapi/internal/loan"
)

type fakeLoanSource struct {
	loans []loan.Loan
	err   error
}

func (f *fakeLoanSource) Overdue(ctx context.Context) ([]loan.Loan, error) {
	return f.loans, f.err
}

type fakeMailer struct {
	sent [][]string
}

func (f *fakeMailer) Send(to []string, subject, body string) error {
	f.sent = append(f.sent, to)
	return nil
}

func TestOverdueNotifier_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("sends one mail to distinct customers", func(t *testing.T) {
		source := &fakeLoanSource{loans: []loan.Loan{
			{ID: "l-1", CustomerEmail: "ana@example.com"},
			{ID: "l-2", CustomerEmail: "bea@example.com"},
			{ID: "l-3", CustomerEmail: "ana@example.com"},
		}}
		mailer := &fakeMailer{}
		n := NewOverdueNotifier(source, mailer, time.Hour, "Overdue loan", "Please return it")

		assert.NoError(t, n.Notify(ctx))
		assert.Len(t, mailer.sent, 1)
		assert.Equal(t, []string{"ana@example.com", "bea@example.com"}, mailer.sent[0])
	})

	t.Run("sends nothing when no loan is overdue", func(t *testing.T) {
		mailer := &fakeMailer{}
		n := NewOverdueNotifier(&fakeLoanSource{}, mailer, time.Hour, "s", "m")

		assert.NoError(t, n.Notify(ctx))
		assert.Empty(t, mailer.sent)
	})

	t.Run("skips loans without an email", func(t *testing.T) {
		source := &fakeLoanSource{loans: []loan.Loan{{ID: "l-1"}}}
		mailer := &fakeMailer{}
		n := NewOverdueNotifier(source, mailer, time.Hour, "s", "m")

		assert.NoError(t, n.Notify(ctx))
		assert.Empty(t, mailer.sent)
	})

	t.Run("propagates source errors", func(t *testing.T) {
		n := NewOverdueNotifier(&fakeLoanSource{err: assert.AnError}, &fakeMailer{}, time.Hour, "s", "m")

		assert.ErrorIs(t, n.Notify(ctx), assert.AnError)
	})
}

func TestOverdueNotifier_RunStopsOnCancel(t *testing.T) {
	n := NewOverdueNotifier(&fakeLoanSource{}, &fakeMailer{}, time.Millisecond, "s", "m")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop after cancel")
	}
}
