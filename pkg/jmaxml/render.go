package jmaxml

import (
	"fmt"
	"strings"

	"github.com/umputun/quakewatch/pkg/domain"
)

const timeLayout = "2006-01-02 15:04:05-07:00"

// Render makes a human readable multi-line text of the bulletin. Downstream consumers
// depend on this layout, keep it stable.
func Render(b *domain.Bulletin) string {
	var sb strings.Builder
	renderHead(&sb, b.Head)

	if b.Hypocenter != nil {
		sb.WriteString("\n\n")
		renderHypocenter(&sb, b.Hypocenter)
	}

	if b.Intensity != nil {
		sb.WriteString("\n\n")
		if b.Hypocenter != nil {
			sb.WriteString("\n")
		}
		renderIntensity(&sb, b.Intensity)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func renderHead(sb *strings.Builder, h domain.Head) {
	fmt.Fprintf(sb, "%s (%s)\n", h.Title, h.InfoKind)
	fmt.Fprintf(sb, "更新時刻: %s\n", h.ReportTime.Format(timeLayout))
	sb.WriteString("\n")
	sb.WriteString(h.Headline + "\n")
	sb.WriteString("\n")
	sb.WriteString(h.ForecastComment)
	if h.FreeFormComment != "" {
		sb.WriteString("\n\n")
		sb.WriteString(h.FreeFormComment)
	}
}

func renderHypocenter(sb *strings.Builder, h *domain.Hypocenter) {
	fmt.Fprintf(sb, "発生時刻: %s\n", h.OriginTime.Format(timeLayout))
	fmt.Fprintf(sb, "震源: %s\n", h.EpicenterName)
	fmt.Fprintf(sb, "　　  %s\n", h.CoordinateText)
	fmt.Fprintf(sb, "規模: %s", h.MagnitudeText)
}

func renderIntensity(sb *strings.Builder, in *domain.Intensity) {
	fmt.Fprintf(sb, "最大震度: %s\n", in.MaxIntensity)
	sb.WriteString("\n")
	for _, p := range in.Prefectures {
		fmt.Fprintf(sb, "%s Max: %s\n", p.Name, p.MaxIntensity)
		for _, a := range p.Areas {
			fmt.Fprintf(sb, "    %s: %s\n", a.Name, a.MaxIntensity)
		}
	}
}
