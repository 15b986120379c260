package domain

import "time"

// UserTask — снимок user task, полученный через search.
//
// Assign/complete работают по Key, а не по локальному снимку, поэтому
// между запросом и действием снимок может устареть.
type UserTask struct {
	Key                 Key           `json:"userTaskKey"`
	ElementID           string        `json:"elementId"`
	Name                string        `json:"name,omitempty"`
	ProcessInstanceKey  Key           `json:"processInstanceKey"`
	ProcessDefinitionID string        `json:"processDefinitionId,omitempty"`
	Assignee            string        `json:"assignee,omitempty"`
	State               UserTaskState `json:"state,omitempty"`
	CreationDate        time.Time     `json:"creationDate,omitempty"`
	Variables           Variables     `json:"variables,omitempty"`
}

// IsAssigned возвращает true, если у task есть исполнитель.
func (t *UserTask) IsAssigned() bool {
	return t.Assignee != ""
}
