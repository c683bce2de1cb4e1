package skill

import (
	"strings"

	"github.com/seu-repo/appinventor-skill/internal/domain"
)

// rawSlot returns the trimmed value the user spoke for the named slot.
// Entity resolutions are ignored so reports carry the user's own words.
func rawSlot(env *domain.RequestEnvelope, name string) string {
	slot, ok := env.Slot(name)
	if !ok {
		return ""
	}
	return strings.TrimSpace(slot.Value)
}
