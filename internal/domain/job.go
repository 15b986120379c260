package domain

import "time"

// Job — service task job, активированный воркером.
//
// Доставляется брокером обработчику и потребляется ровно один раз:
// обработчик обязан явно завершить job (complete) или отклонить (fail).
type Job struct {
	Key                 Key               `json:"jobKey"`
	Type                string            `json:"type"`
	ProcessInstanceKey  Key               `json:"processInstanceKey"`
	ProcessDefinitionID string            `json:"processDefinitionId,omitempty"`
	ElementID           string            `json:"elementId,omitempty"`
	Retries             int               `json:"retries"`
	Worker              string            `json:"worker,omitempty"`
	Deadline            int64             `json:"deadline,omitempty"` // unix ms
	Variables           Variables         `json:"variables,omitempty"`
	CustomHeaders       map[string]string `json:"customHeaders,omitempty"`
}

// DeadlineTime возвращает deadline как time.Time (zero, если не задан).
func (j *Job) DeadlineTime() time.Time {
	if j.Deadline == 0 {
		return time.Time{}
	}
	return time.UnixMilli(j.Deadline)
}
