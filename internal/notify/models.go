package notify

// Target modes. A notice has exactly one, with the matching scoping
// foreign key set and the others empty.
const (
	TargetGlobal  = "global"
	TargetBatch   = "batch"
	TargetStudent = "student"
	TargetParent  = "parent"
)

type Notice struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	URL       string `json:"url"`
	Target    string `json:"target"`
	BatchID   string `json:"batch_id,omitempty"`
	StudentID string `json:"student_id,omitempty"`
	ParentID  string `json:"parent_id,omitempty"`
	CreatedBy string `json:"created_by"`
	CreatedAt int64  `json:"created_at"`
}

// Subscription is a standard web-push subscription record.
type Subscription struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

// Payload is the message shape delivered to subscriptions.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}
