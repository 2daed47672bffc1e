package compose

import (
	"errors"
	"fmt"

	"github.com/vk/layergraphgo/internal/backend"
	"github.com/vk/layergraphgo/internal/ident"
	"github.com/vk/layergraphgo/internal/layer"
	"github.com/vk/layergraphgo/internal/spec"
)

// ComposeGroup builds the group-level builder: every channel's combined
// builder embedded side by side, each channel's output linked to a group
// boundary socket named after the channel. Degraded-layer errors from
// the channels are joined and returned with the still-usable builder.
func ComposeGroup(g *layer.Group) (*spec.Builder, error) {
	b := spec.NewBuilder(scopeName(g.Name))

	var errs []error
	for _, c := range g.Channels {
		if err := DetectLinkCycle(c); err != nil {
			return nil, fmt.Errorf("channel %q: %w", c.Name, err)
		}

		cb, err := ComposeChannel(c)
		if err != nil {
			errs = append(errs, fmt.Errorf("channel %q: %w", c.Name, err))
		}

		id := scopeName(c.Name)
		if err := b.Embed(id, cb); err != nil {
			return nil, err
		}
		b.MustLink(id, backend.SocketColor, ident.End, c.Name)
		b.MustLink(id, backend.SocketAlpha, ident.End, c.Name+" Alpha")
	}
	return b, errors.Join(errs...)
}

// scopeName maps a user-facing display name onto the identifier
// alphabet. Display names may repeat arbitrary punctuation; identifiers
// may not.
func scopeName(display string) string {
	out := make([]rune, 0, len(display))
	for _, r := range display {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '_', r == '-':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "_"
	}
	return string(out)
}
