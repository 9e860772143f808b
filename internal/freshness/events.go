package freshness

// Event names a pipeline checkpoint whose last completion time is tracked
type Event string

// Contract-level checkpoint events
const (
	EventParsed            Event = "parsed"
	EventTemplateValidated Event = "template_validated"
	EventLLMValidated      Event = "llm_validated"
	EventSAPValidated      Event = "sap_validated"
	EventPositionRefreshed Event = "position_refreshed"
	EventLegalReviewed     Event = "legal_reviewed"
)

// Product-group-level checkpoint events
const (
	EventFullRefresh Event = "full_refresh"
)

// ContractEvents lists the contract-level events in evaluation order.
// The order is fixed configuration; staleness results follow it.
var ContractEvents = []Event{
	EventParsed,
	EventTemplateValidated,
	EventLLMValidated,
	EventSAPValidated,
	EventPositionRefreshed,
	EventLegalReviewed,
}

// ProductGroupEvents lists the product-group-level events in evaluation order
var ProductGroupEvents = []Event{
	EventFullRefresh,
}
