package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/gibbs/pkg/domain"
)

// Report renders a run as a markdown document: setpoints, energy and a
// per-species table of feed and product amounts.
func Report(record domain.RunRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", record.Unit)

	model := record.Model
	if model == "" {
		model = "custom"
	}
	fmt.Fprintf(&sb, "| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Run | `%s` |\n", record.ID)
	fmt.Fprintf(&sb, "| Model | %s |\n", model)
	fmt.Fprintf(&sb, "| Temperature | %g K |\n", record.Product.Temperature)
	fmt.Fprintf(&sb, "| Pressure | %g Pa |\n", record.Product.Pressure)
	fmt.Fprintf(&sb, "| Gibbs energy | %.6g |\n", record.GibbsEnergy)
	fmt.Fprintf(&sb, "| Total moles | %.6g |\n", record.Product.TotalMoles())
	fmt.Fprintf(&sb, "| Fingerprint | `%s` |\n\n", shortFingerprint(record.Fingerprint))

	sb.WriteString("## Composition\n\n")
	sb.WriteString("| Species | Feed (mol) | Product (mol) | Change | Mole fraction |\n")
	sb.WriteString("|---|---:|---:|---:|---:|\n")

	fractions := record.Product.Composition.MoleFractions()
	union := record.Feed.Composition.Clone()
	for k := range record.Product.Composition {
		if _, ok := union[k]; !ok {
			union[k] = 0
		}
	}
	for _, species := range union.Species() {
		before := record.Feed.Composition[species]
		after := record.Product.Composition[species]
		fmt.Fprintf(&sb, "| %s | %.6g | %.6g | %+.3g | %.4f |\n",
			species, before, after, after-before, fractions[species])
	}

	diff := domain.Diff(record.Feed, record.Product)
	if diff.IsEmpty() {
		sb.WriteString("\n_Product is identical to the feed._\n")
	} else {
		fmt.Fprintf(&sb, "\n_%d of %d species changed._\n", len(diff.Species), len(union))
	}

	return sb.String()
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
