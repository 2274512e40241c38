package vault

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// AutoConfirm is a Confirmer for simulations. It approves every prompt, unless Reject returns true
// for its title. Every prompt is logged and recorded.
type AutoConfirm struct {
	Log    zerolog.Logger
	Reject func(title string) bool

	mu      sync.Mutex
	prompts []string
}

// Confirm implements Confirmer.
func (c *AutoConfirm) Confirm(title, body string) bool {
	c.record(title, body)
	approved := c.Reject == nil || !c.Reject(title)
	c.Log.Debug().Str("title", title).Str("body", body).Bool("approved", approved).Msg("confirm")
	return approved
}

// Display implements Confirmer.
func (c *AutoConfirm) Display(title, body string) {
	c.record(title, body)
	c.Log.Debug().Str("title", title).Str("body", body).Msg("display")
}

// Prompts returns every prompt shown so far, as "title: body".
func (c *AutoConfirm) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// Shown returns true if a prompt with the given title was shown.
func (c *AutoConfirm) Shown(title string) bool {
	for _, p := range c.Prompts() {
		if strings.HasPrefix(p, title+": ") {
			return true
		}
	}
	return false
}

func (c *AutoConfirm) record(title, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, title+": "+body)
}
