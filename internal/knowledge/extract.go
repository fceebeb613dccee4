package knowledge

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/orrery/internal/task"
)

//go:embed vendors.toml
var vendorTOML []byte

type vendorPattern struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
}

type vendorTable struct {
	Vendors []vendorPattern `toml:"vendors"`
}

var (
	vendorOnce     sync.Once
	vendorPatterns []vendorPattern
)

// patterns returns the embedded vendor keyword table. The embed is part
// of the build, so a parse failure is a programming error.
func patterns() []vendorPattern {
	vendorOnce.Do(func() {
		var table vendorTable
		if err := toml.Unmarshal(vendorTOML, &table); err != nil {
			panic(fmt.Sprintf("knowledge: embedded vendors.toml: %v", err))
		}
		vendorPatterns = table.Vendors
	})
	return vendorPatterns
}

// LearnFromCompletion updates the store from one completed task. Vendor
// entries are upserted for every keyword match in the title or raw
// input, and the two timing preferences for the task's kind are always
// refreshed from the completion time. Returns the vendors observed, for
// telemetry.
func (s *Store) LearnFromCompletion(f task.Facts, at time.Time) []string {
	text := strings.ToLower(f.Title + " " + f.RawInput)

	var seen []string
	for _, p := range patterns() {
		for _, kw := range p.Keywords {
			if strings.Contains(text, kw) {
				s.Observe(CategoryVendor, p.Name, p.Name, at)
				seen = append(seen, p.Name)
				break
			}
		}
	}

	kind := string(f.Kind)
	if kind == "" {
		kind = string(task.KindObligation)
	}
	s.Observe(CategoryTiming, "preferred_hour."+kind, fmt.Sprintf("%d", at.Hour()), at)
	s.Observe(CategoryTiming, "preferred_weekday."+kind, at.Weekday().String(), at)

	return seen
}
