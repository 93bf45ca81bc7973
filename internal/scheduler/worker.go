package scheduler

import (
	"context"
	"errors"
	"fmt"

	userrepo "leadmarket_backend/internal/auth/repository"
	contractorrepo "leadmarket_backend/internal/contractors/repository"
	"leadmarket_backend/internal/email"
	leadrepo "leadmarket_backend/internal/leads/repository"
	requesterrepo "leadmarket_backend/internal/requesters/repository"
	"leadmarket_backend/platform/config"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes the notification email queue. Notifications are best-effort
// and always re-read current state: a task for a lead that has since moved on
// is dropped, not retried.
type Worker struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	leads       *leadrepo.Repository
	contractors *contractorrepo.Repository
	requesters  *requesterrepo.Repository
	users       *userrepo.Repository
	sender      email.Sender
	log         *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:      server,
		mux:         mux,
		leads:       leadrepo.New(pool),
		contractors: contractorrepo.New(pool),
		requesters:  requesterrepo.New(pool),
		users:       userrepo.New(pool),
		sender:      sender,
		log:         log,
	}

	mux.HandleFunc(TaskLeadAssignedEmail, w.handleLeadAssignedEmail)
	mux.HandleFunc(TaskLeadRevealedEmail, w.handleLeadRevealedEmail)
	mux.HandleFunc(TaskLeadMatchedEmail, w.handleLeadMatchedEmail)
	mux.HandleFunc(TaskCreditsGrantedEmail, w.handleCreditsGrantedEmail)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleLeadAssignedEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadEmailPayload(task)
	if err != nil {
		return err
	}

	lead, contractor, err := w.loadLeadContractor(ctx, payload)
	if err != nil || contractor == nil {
		return err
	}
	if lead.AssignedContractorID == nil || *lead.AssignedContractorID != contractor.ID {
		return nil
	}

	user, err := w.users.GetUserByID(ctx, contractor.ID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil
		}
		return err
	}

	return w.sender.SendLeadAssignedEmail(ctx, user.Email, contractor.Name, lead.TradeType, lead.ZipCode)
}

func (w *Worker) handleLeadRevealedEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadEmailPayload(task)
	if err != nil {
		return err
	}

	lead, contractor, err := w.loadLeadContractor(ctx, payload)
	if err != nil || contractor == nil {
		return err
	}

	// Notify the person behind the lead. Anonymous submissions without a
	// contact email get no notification.
	toEmail := ""
	if lead.Email != nil {
		toEmail = *lead.Email
	}
	if toEmail == "" && lead.RequesterID != nil {
		requester, err := w.requesters.GetByID(ctx, *lead.RequesterID)
		if err != nil {
			if errors.Is(err, requesterrepo.ErrNotFound) {
				return nil
			}
			return err
		}
		toEmail = requester.Email
	}
	if toEmail == "" {
		return nil
	}

	return w.sender.SendLeadRevealedEmail(ctx, toEmail, lead.ContactName, contractor.BusinessName)
}

func (w *Worker) handleLeadMatchedEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadEmailPayload(task)
	if err != nil {
		return err
	}

	lead, contractor, err := w.loadLeadContractor(ctx, payload)
	if err != nil || contractor == nil {
		return err
	}

	user, err := w.users.GetUserByID(ctx, contractor.ID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil
		}
		return err
	}

	return w.sender.SendLeadMatchedEmail(ctx, user.Email, contractor.Name, lead.TradeType)
}

func (w *Worker) handleCreditsGrantedEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCreditsGrantedEmailPayload(task)
	if err != nil {
		return err
	}

	contractorID, err := uuid.Parse(payload.ContractorID)
	if err != nil {
		return err
	}

	contractor, err := w.contractors.GetByID(ctx, contractorID)
	if err != nil {
		if errors.Is(err, contractorrepo.ErrNotFound) {
			return nil
		}
		return err
	}

	user, err := w.users.GetUserByID(ctx, contractor.ID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil
		}
		return err
	}

	return w.sender.SendCreditsGrantedEmail(ctx, user.Email, contractor.Name, payload.Credits, contractor.CreditBalance)
}

// loadLeadContractor resolves a lead email payload. A nil contractor with a
// nil error means the referenced rows are gone and the task should be dropped.
func (w *Worker) loadLeadContractor(ctx context.Context, payload LeadEmailPayload) (leadrepo.Lead, *contractorrepo.Contractor, error) {
	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return leadrepo.Lead{}, nil, err
	}
	contractorID, err := uuid.Parse(payload.ContractorID)
	if err != nil {
		return leadrepo.Lead{}, nil, err
	}

	lead, err := w.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, leadrepo.ErrNotFound) {
			return leadrepo.Lead{}, nil, nil
		}
		return leadrepo.Lead{}, nil, err
	}

	contractor, err := w.contractors.GetByID(ctx, contractorID)
	if err != nil {
		if errors.Is(err, contractorrepo.ErrNotFound) {
			return leadrepo.Lead{}, nil, nil
		}
		return leadrepo.Lead{}, nil, err
	}

	return lead, &contractor, nil
}
