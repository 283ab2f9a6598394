package core

import "time"

// NodeID identifies a node in the coding-agent graph. The graph builder
// resolves every route against this enumeration at construction time, so a
// misconfigured graph fails before the first run.
type NodeID string

// Built-in node identifiers.
const (
	NodeRecommend NodeID = "recommend_steps"
	NodeCreate    NodeID = "create_code"
	NodeReview    NodeID = "human_review"
	NodeExecute   NodeID = "execute_code"
	NodeFix       NodeID = "fix_code"
	NodeExplain   NodeID = "explain_code"
	NodeReport    NodeID = "report_outputs"

	// NodeEnd is the terminal marker returned by routing once the report
	// node has run. It never resolves to a registered node.
	NodeEnd NodeID = "__end__"
)

// Reserved state keys. Workflows may carry any additional keys; the engine
// only assigns semantics to these.
const (
	KeyCodeSnippet         = "code_snippet"
	KeyExecutionResult     = "execution_result"
	KeyError               = "error"
	KeyRetryCount          = "retry_count"
	KeyHumanDecision       = "human_decision"
	KeyHumanResponse       = "human_response"
	KeyModificationHistory = "modification_history"
	KeyMessages            = "messages"
	KeyRecommendedSteps    = "recommended_steps"
	KeyReport              = "report"
)

// Decision is the outcome recorded by the human review node.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"
)

// Message is one entry in the append-only workflow transcript kept under
// KeyMessages.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Node      NodeID    `json:"node,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// Transcript roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
