package extensions

import (
	"context"
	"fmt"
	"strings"

	"github.com/km-arc/go-resolver/framework/container"
)

// ── Tags ──────────────────────────────────────────────────────────────────────

// TagHandler claims "tag:<name>" extras, grouping services under a tag.
//
//	services:
//	  report.cpu:    { module: reports.cpu, extras: ["tag:reports"] }
//	  report.memory: { module: reports.memory, extras: ["tag:reports"] }
//
//	reports, err := extensions.Tagged(ctx, c, "reports")
type TagHandler struct{}

const tagPrefix = "tag:"

func (TagHandler) CanHandleExtra(extra any, _ *container.ExtensionContext) bool {
	_, ok := tagName(extra)
	return ok
}

func (TagHandler) LintExtra(extra any, _ *container.ExtensionContext) []string {
	name, _ := tagName(extra)
	if strings.TrimSpace(name) != name {
		return []string{fmt.Sprintf("Tag %q has surrounding spaces", name)}
	}
	return nil
}

func tagName(extra any) (string, bool) {
	s, ok := extra.(string)
	if !ok || !strings.HasPrefix(s, tagPrefix) || len(s) == len(tagPrefix) {
		return "", false
	}
	return strings.TrimPrefix(s, tagPrefix), true
}

// TaggedIDs returns the ids of every service tagged with tag, sorted.
func TaggedIDs(c *container.Container, tag string) []string {
	var ids []string
	for _, id := range c.ServiceIDs() {
		def, _ := c.Definition(id)
		for _, extra := range def.Extras {
			if name, ok := tagName(extra); ok && name == tag {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids
}

// Tagged resolves every service tagged with tag, in TaggedIDs order.
// Called from inside an extension, pass the ctx the extension was given.
func Tagged(ctx context.Context, c *container.Container, tag string) ([]any, error) {
	ids := TaggedIDs(c, tag)
	futures := make([]*container.Future, len(ids))
	for i, id := range ids {
		futures[i] = c.Get(ctx, id)
	}
	return container.AwaitAll(ctx, futures...)
}
