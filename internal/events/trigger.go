package events

import "encoding/json"

// TriggerHeader is the response header HTMX reads client-side events from.
const TriggerHeader = "HX-Trigger"

// InvalidateEvent tells the page that one definition card is stale and must be re-fetched.
const InvalidateEvent = "definition:invalidate"

// InvalidateTrigger renders the HX-Trigger value asking the page to refresh definition id.
func InvalidateTrigger(id string) string {
	b, err := json.Marshal(map[string]map[string]string{
		InvalidateEvent: {"id": id},
	})
	if err != nil {
		// A map of strings always marshals
		panic(err)
	}
	return string(b)
}
