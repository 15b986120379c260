package domain

// ProcessDefinition — развёрнутое определение процесса.
type ProcessDefinition struct {
	// ID — bpmnProcessId из BPMN-файла.
	ID string `json:"processDefinitionId"`

	// Version — версия, назначенная брокером (инкремент при каждом новом деплое).
	Version int `json:"processDefinitionVersion"`

	// Key — ключ конкретной версии определения.
	Key Key `json:"processDefinitionKey"`

	// ResourceName — имя ресурса, из которого определение было развёрнуто.
	ResourceName string `json:"resourceName,omitempty"`
}

// Deployment — результат деплоя ресурса.
//
// Создаётся шагом deploy, никогда не изменяется, используется только для логирования.
type Deployment struct {
	Key       Key                 `json:"deploymentKey"`
	TenantID  string              `json:"tenantId,omitempty"`
	Processes []ProcessDefinition `json:"processes,omitempty"`
}

// Process возвращает определение процесса по ID, если оно есть в деплое.
func (d *Deployment) Process(id string) (ProcessDefinition, bool) {
	for _, p := range d.Processes {
		if p.ID == id {
			return p, true
		}
	}
	return ProcessDefinition{}, false
}

// ProcessInstance — ссылка на process instance.
//
// Локально не изменяется: жизненный цикл отслеживает брокер.
type ProcessInstance struct {
	Key                      Key           `json:"processInstanceKey"`
	ProcessDefinitionID      string        `json:"processDefinitionId"`
	ProcessDefinitionKey     Key           `json:"processDefinitionKey"`
	ProcessDefinitionVersion int           `json:"processDefinitionVersion"`
	State                    InstanceState `json:"state,omitempty"`
	Variables                Variables     `json:"variables,omitempty"`
}
