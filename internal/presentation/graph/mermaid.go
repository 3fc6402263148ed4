package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/gibbs/pkg/domain"
)

// Edge is one lifecycle transition.
type Edge struct {
	From  domain.Phase
	To    domain.Phase
	Label string
}

// LifecycleEdges lists the transitions of the reactor state machine.
// Validate never changes the phase and is drawn as a self-loop on Ready.
var LifecycleEdges = []Edge{
	{From: domain.PhaseUninitialized, To: domain.PhaseReady, Label: "Initialize"},
	{From: domain.PhaseReady, To: domain.PhaseReady, Label: "Validate"},
	{From: domain.PhaseReady, To: domain.PhaseCalculated, Label: "Calculate ok"},
	{From: domain.PhaseReady, To: domain.PhaseReady, Label: "Calculate failed"},
	{From: domain.PhaseCalculated, To: domain.PhaseCalculated, Label: "Calculate ok"},
	{From: domain.PhaseCalculated, To: domain.PhaseReady, Label: "Calculate failed / Initialize"},
	{From: domain.PhaseReady, To: domain.PhaseUninitialized, Label: "Terminate"},
	{From: domain.PhaseCalculated, To: domain.PhaseUninitialized, Label: "Terminate"},
}

// Overlay contains dynamic state data to visualize on the diagram.
type Overlay struct {
	Visited []domain.Phase
	Current domain.Phase
}

// GenerateMermaid produces a Mermaid state diagram of the reactor lifecycle.
// It applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	sb.WriteString(fmt.Sprintf("    [*] --> %s\n", stateID(domain.PhaseUninitialized)))

	for _, e := range LifecycleEdges {
		sb.WriteString(fmt.Sprintf("    %s --> %s: %s\n", stateID(e.From), stateID(e.To), e.Label))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000\n")

		seen := make(map[domain.Phase]bool)
		for _, p := range overlay.Visited {
			if p == "" || seen[p] || p == overlay.Current {
				continue
			}
			seen[p] = true
			sb.WriteString(fmt.Sprintf("    class %s visited\n", stateID(p)))
		}

		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current\n", stateID(overlay.Current)))
		}
	}

	return sb.String()
}

// stateID turns a phase into a Mermaid identifier, e.g. "ready" -> "Ready".
func stateID(p domain.Phase) string {
	s := strings.ReplaceAll(string(p), "-", "_")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
