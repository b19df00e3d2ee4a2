package entity

// AdminOverview aggregates system-wide counts
type AdminOverview struct {
	UsersTotal     int `json:"users_total"`
	UsersAdmins    int `json:"users_admins"`
	UsersWorkers   int `json:"users_workers"`
	UsersCustomers int `json:"users_customers"`

	ServiceRequestsTotal      int `json:"service_requests_total"`
	ServiceRequestsOpen       int `json:"service_requests_open"`
	ServiceRequestsInProgress int `json:"service_requests_in_progress"`
	ServiceRequestsCompleted  int `json:"service_requests_completed"`

	TasksTotal      int `json:"tasks_total"`
	TasksAssigned   int `json:"tasks_assigned"`
	TasksInProgress int `json:"tasks_in_progress"`
	TasksCompleted  int `json:"tasks_completed"`
}

// WorkerSummary counts the tasks of one field worker by status
type WorkerSummary struct {
	Assigned   int `json:"assigned"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

// CustomerSummary counts the service requests of one customer by status
type CustomerSummary struct {
	RequestsTotal      int `json:"requests_total"`
	RequestsOpen       int `json:"requests_open"`
	RequestsInProgress int `json:"requests_in_progress"`
	RequestsCompleted  int `json:"requests_completed"`
}
