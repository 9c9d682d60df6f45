package domain

import "time"

// Pure data contracts for the remaining backend resources. The dashboard
// slice only reads these; their lifecycles live server-side.

type ConnectorStatus string

const (
	ConnectorActive   ConnectorStatus = "active"
	ConnectorInactive ConnectorStatus = "inactive"
	ConnectorError    ConnectorStatus = "error"
	ConnectorSyncing  ConnectorStatus = "syncing"
)

// Connector is an integration with an external data source (mail, calendar, ...).
type Connector struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Provider string `json:"provider"`
	Name     string `json:"name"`

	Scopes      []string        `json:"scopes"`
	Credentials map[string]any  `json:"credentials"`
	Status      ConnectorStatus `json:"status"`

	LastSync      *time.Time     `json:"last_sync"`
	SyncFrequency int            `json:"sync_frequency"`
	Settings      map[string]any `json:"settings"`
	IsEnabled     bool           `json:"is_enabled"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ConnectorForm is the creation payload for connectors.
type ConnectorForm struct {
	Provider string         `json:"provider"`
	Name     string         `json:"name"`
	Scopes   []string       `json:"scopes"`
	Settings map[string]any `json:"settings"`
}

type Sensitivity string

const (
	SensitivityPublic       Sensitivity = "public"
	SensitivityPrivate      Sensitivity = "private"
	SensitivityConfidential Sensitivity = "confidential"
)

// Document is an indexed memory item.
type Document struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	SourceURI string `json:"source_uri"`
	App       string `json:"app"`
	Owner     string `json:"owner"`

	Title    string `json:"title"`
	Content  string `json:"content"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
	Hash     string `json:"hash"`

	Vector      []float64      `json:"vector"`
	Metadata    map[string]any `json:"metadata"`
	Sensitivity Sensitivity    `json:"sensitivity"`
	TTLDays     *int           `json:"ttl_days"`
	IsIndexed   bool           `json:"is_indexed"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Episode is a remembered interaction (email thread, meeting, call, note).
type Episode struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Type     string `json:"type"` // email | meeting | call | note
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`

	Participants    []string   `json:"participants"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int       `json:"duration_minutes"`
	SourceURI       string     `json:"source_uri"`

	Vector    []float64      `json:"vector"`
	Metadata  map[string]any `json:"metadata"`
	Tags      []string       `json:"tags"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Entity is a node in the knowledge graph.
type Entity struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	Type        string `json:"type"` // person | organization | project | topic
	Name        string `json:"name"`
	Description string `json:"description"`

	Attributes map[string]any `json:"attributes"`
	Relations  map[string]any `json:"relations"`
	Vector     []float64      `json:"vector"`
	Metadata   map[string]any `json:"metadata"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// AutomationTrigger fires a workflow. Config shape depends on the type.
type AutomationTrigger struct {
	Type   string         `json:"type"` // topic_watch | inbox_label | folder_change | time | webhook
	Config map[string]any `json:"config"`
}

type AutomationWorkflow struct {
	Template   string         `json:"template"`
	Parameters map[string]any `json:"parameters"`
}

type Automation struct {
	ID          string             `json:"id"`
	TenantID    string             `json:"tenant_id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Trigger     AutomationTrigger  `json:"trigger"`
	Workflow    AutomationWorkflow `json:"workflow"`
	IsActive    bool               `json:"is_active"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// AuditLog is one trail entry for a user or system action.
type AuditLog struct {
	ID       string  `json:"id"`
	TenantID string  `json:"tenant_id"`
	UserID   *string `json:"user_id"`

	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Details      map[string]any `json:"details"`

	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	Success      bool      `json:"success"`
	ErrorMessage *string   `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}
