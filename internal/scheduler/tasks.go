package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadAssignedEmail = "leads.email.assigned"

const TaskLeadRevealedEmail = "leads.email.revealed"

const TaskLeadMatchedEmail = "leads.email.matched"

const TaskCreditsGrantedEmail = "credits.email.granted"

type LeadEmailPayload struct {
	LeadID       string `json:"leadId"`
	ContractorID string `json:"contractorId"`
}

type CreditsGrantedEmailPayload struct {
	ContractorID string `json:"contractorId"`
	Credits      int    `json:"credits"`
}

func NewLeadAssignedEmailTask(payload LeadEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadAssignedEmail, data), nil
}

func NewLeadRevealedEmailTask(payload LeadEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadRevealedEmail, data), nil
}

func NewLeadMatchedEmailTask(payload LeadEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadMatchedEmail, data), nil
}

func ParseLeadEmailPayload(task *asynq.Task) (LeadEmailPayload, error) {
	var payload LeadEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadEmailPayload{}, err
	}
	return payload, nil
}

func NewCreditsGrantedEmailTask(payload CreditsGrantedEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCreditsGrantedEmail, data), nil
}

func ParseCreditsGrantedEmailPayload(task *asynq.Task) (CreditsGrantedEmailPayload, error) {
	var payload CreditsGrantedEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CreditsGrantedEmailPayload{}, err
	}
	return payload, nil
}
