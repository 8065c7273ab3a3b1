// Package broker implements the engine side of the bidding protocol: the
// Create handshake, RequestCost/ResponseCost, Perform/Complete, and Purge
// message kinds running over a bus.Bus.
package broker

// Location mirrors a destination coordinate pair in wire payloads.
type Location struct {
	X, Y float64
}

// CreatePayload announces one unit to the broker at startup.
type CreatePayload struct {
	Name                string   `json:"name"`
	Location            Location `json:"location"`
	Model               string   `json:"model"`
	InteractionElements []string `json:"interactionElements"`
	State               string   `json:"state"`
}

// AckPayload acknowledges a Create, Perform, or Complete by unit name.
type AckPayload struct {
	Name string `json:"name"`
}

// RequestCostPayload asks the engine what a unit would charge to perform an
// interaction, optionally at a destination (Transport).
type RequestCostPayload struct {
	ServiceRequester   string    `json:"serviceRequester"`
	InteractionElement string    `json:"interactionElement"`
	Destination        *Location `json:"destination,omitempty"`
}

// ResponseCostPayload answers a RequestCost. It is omitted entirely (not
// sent) when the unit cannot service the request.
type ResponseCostPayload struct {
	Cost uint64 `json:"cost"`
}

// PerformPayload commands the engine to bind a unit to a task.
type PerformPayload struct {
	InteractionElement string    `json:"interactionElement"`
	Destination        *Location `json:"destination,omitempty"`
}

// CompletePayload and PurgePayload carry no fields; their meaning is
// entirely in the topic and messageType.
type CompletePayload struct{}
type PurgePayload struct{}

// StateChangePayload announces a unit's Alive/Blocked transition.
type StateChangePayload struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

const (
	topicCreate    = "i4sim/create"
	topicCreateAck = "i4sim/create/ack"
	topicPurge     = "i4sim/purge"
)

func topicStateChange(unit string) string { return "i4sim/" + unit + "/stateChange" }
func topicRequestCost(unit string) string { return "i4sim/" + unit + "/requestCost" }
func topicResponseCost(unit string) string { return "i4sim/" + unit + "/responseCost" }
func topicPerform(unit string) string     { return "i4sim/" + unit + "/perform" }
func topicPerformAck(unit string) string  { return "i4sim/" + unit + "/perform/ack" }
func topicComplete(unit string) string    { return "i4sim/" + unit + "/complete" }
func topicCompleteAck(unit string) string { return "i4sim/" + unit + "/complete/ack" }

// TopicCreate, TopicCreateAck, TopicRequestCost, TopicResponseCost,
// TopicPerform, TopicPerformAck, TopicComplete, and TopicCompleteAck are
// the exported forms of the same topic names, for counterpart broker
// implementations (e.g. internal/broker/dummy) outside this package.
const (
	TopicCreate    = topicCreate
	TopicCreateAck = topicCreateAck
)

func TopicRequestCost(unit string) string  { return topicRequestCost(unit) }
func TopicResponseCost(unit string) string { return topicResponseCost(unit) }
func TopicPerform(unit string) string      { return topicPerform(unit) }
func TopicPerformAck(unit string) string   { return topicPerformAck(unit) }
func TopicComplete(unit string) string     { return topicComplete(unit) }
func TopicCompleteAck(unit string) string  { return topicCompleteAck(unit) }

const (
	messageTypeCreate       = "Create"
	messageTypeAck          = "Acknowledge"
	messageTypeStateChange  = "StateChange"
	messageTypeRequestCost  = "RequestCost"
	messageTypeResponseCost = "ResponseCost"
	messageTypePerform      = "Perform"
	messageTypeComplete     = "Complete"
	messageTypePurge        = "Purge"
)
