package enums

// ProjectStatus follows a job through the coating line.
type ProjectStatus string

const (
	ProjectStatusReceived     ProjectStatus = "received"
	ProjectStatusPreparation  ProjectStatus = "preparation"
	ProjectStatusCoating      ProjectStatus = "coating"
	ProjectStatusCuring       ProjectStatus = "curing"
	ProjectStatusQualityCheck ProjectStatus = "quality_check"
	ProjectStatusReady        ProjectStatus = "ready"
	ProjectStatusDelivered    ProjectStatus = "delivered"
	ProjectStatusCancelled    ProjectStatus = "cancelled"
)

var validProjectStatuses = []ProjectStatus{
	ProjectStatusReceived,
	ProjectStatusPreparation,
	ProjectStatusCoating,
	ProjectStatusCuring,
	ProjectStatusQualityCheck,
	ProjectStatusReady,
	ProjectStatusDelivered,
	ProjectStatusCancelled,
}

var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectStatusReceived:     {ProjectStatusPreparation, ProjectStatusCancelled},
	ProjectStatusPreparation:  {ProjectStatusCoating, ProjectStatusCancelled},
	ProjectStatusCoating:      {ProjectStatusCuring, ProjectStatusPreparation, ProjectStatusCancelled},
	ProjectStatusCuring:       {ProjectStatusQualityCheck, ProjectStatusCoating},
	ProjectStatusQualityCheck: {ProjectStatusReady, ProjectStatusCoating},
	ProjectStatusReady:        {ProjectStatusDelivered, ProjectStatusQualityCheck},
}

func (p ProjectStatus) String() string {
	return string(p)
}

func (p ProjectStatus) IsValid() bool {
	return contains(validProjectStatuses, p)
}

// CanTransitionTo reports whether next follows p on the coating line.
func (p ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	return contains(projectTransitions[p], next)
}

// Terminal reports whether no further transitions are possible.
func (p ProjectStatus) Terminal() bool {
	return p == ProjectStatusDelivered || p == ProjectStatusCancelled
}

func ParseProjectStatus(value string) (ProjectStatus, error) {
	return parse(validProjectStatuses, value, "project status")
}

// BatchStatus tracks a curing batch inside an oven.
type BatchStatus string

const (
	BatchStatusPlanned   BatchStatus = "planned"
	BatchStatusRunning   BatchStatus = "running"
	BatchStatusDone      BatchStatus = "done"
	BatchStatusCancelled BatchStatus = "cancelled"
)

var validBatchStatuses = []BatchStatus{BatchStatusPlanned, BatchStatusRunning, BatchStatusDone, BatchStatusCancelled}

func (b BatchStatus) IsValid() bool {
	return contains(validBatchStatuses, b)
}

// Occupies reports whether the batch holds oven capacity.
func (b BatchStatus) Occupies() bool {
	return b == BatchStatusPlanned || b == BatchStatusRunning
}

func ParseBatchStatus(value string) (BatchStatus, error) {
	return parse(validBatchStatuses, value, "batch status")
}

// QualityStatus is the outcome of a quality checklist.
type QualityStatus string

const (
	QualityStatusPending QualityStatus = "pending"
	QualityStatusPassed  QualityStatus = "passed"
	QualityStatusFailed  QualityStatus = "failed"
)

var validQualityStatuses = []QualityStatus{QualityStatusPending, QualityStatusPassed, QualityStatusFailed}

func (q QualityStatus) IsValid() bool {
	return contains(validQualityStatuses, q)
}

func ParseQualityStatus(value string) (QualityStatus, error) {
	return parse(validQualityStatuses, value, "quality status")
}
