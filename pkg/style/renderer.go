package style

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/deployrev/pkg/deploy"
	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/release"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

const timeLayout = "2006-01-02 15:04:05"

// Renderer writes command results in one output format
type Renderer struct {
	out    io.Writer
	format Format
}

// NewRenderer creates a renderer. format must already be resolved; FormatAuto
// renders as text.
func NewRenderer(out io.Writer, format Format) *Renderer {
	return &Renderer{out: out, format: format}
}

// Format returns the renderer's output format
func (r *Renderer) Format() Format {
	return r.format
}

func (r *Renderer) structured() bool {
	return r.format == FormatJSON || r.format == FormatYAML
}

// encode writes v as JSON or YAML
func (r *Renderer) encode(v interface{}) error {
	switch r.format {
	case FormatJSON:
		encoder := json.NewEncoder(r.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case FormatYAML:
		encoder := yaml.NewEncoder(r.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	}
	return fmt.Errorf("format %s is not structured", r.format)
}

func (r *Renderer) println(s string) error {
	_, err := fmt.Fprintln(r.out, s)
	return err
}

// Outcome renders the result of a deployment
func (r *Renderer) Outcome(o *deploy.Outcome) error {
	if r.structured() {
		return r.encode(o)
	}

	if !o.Updated {
		return r.println(fmt.Sprintf("%s %s is already deployed, nothing to do",
			MarkInfo, RevisionStyle.Render(o.Revision)))
	}

	how := "reused"
	if o.Created {
		how = "checked out"
	}
	lines := []string{
		fmt.Sprintf("%s Deployed %s (%s)", MarkSuccess, RevisionStyle.Render(o.Revision), how),
		Indent(PathStyle.Render(o.ReleasePath), 1),
	}
	if o.Previous != "" {
		lines = append(lines, Indent(MutedStyle.Render("previous: "+o.Previous), 1))
	}
	return r.println(strings.Join(lines, "\n"))
}

// Plan renders a dry-run
func (r *Renderer) Plan(p *deploy.Plan) error {
	if r.structured() {
		return r.encode(p)
	}

	var b strings.Builder
	switch p.Action {
	case deploy.ActionNoop:
		fmt.Fprintf(&b, "%s %s is already deployed, nothing would run", MarkInfo, RevisionStyle.Render(p.Revision))
		return r.println(b.String())
	case deploy.ActionReuse:
		fmt.Fprintf(&b, "%s Would switch to existing release %s", MarkPending, RevisionStyle.Render(p.Revision))
	default:
		fmt.Fprintf(&b, "%s Would check out and deploy %s", MarkPending, RevisionStyle.Render(p.Revision))
	}
	b.WriteString("\n" + Indent(PathStyle.Render(p.ReleasePath), 1))
	if p.Previous != "" {
		b.WriteString("\n" + Indent(MutedStyle.Render("current: "+p.Previous), 1))
	}
	for i, step := range p.Steps {
		b.WriteString("\n" + Indent(fmt.Sprintf("%d. %s", i+1, step), 1))
	}
	return r.println(b.String())
}

// Status renders the state of a deploy root
func (r *Renderer) Status(s *deploy.Status) error {
	if r.structured() {
		return r.encode(s)
	}

	lines := []string{TitleStyle.Render(s.DeployRoot)}
	if s.Deployed {
		lines = append(lines,
			fmt.Sprintf("%s current: %s", MarkSuccess, RevisionStyle.Render(s.Revision)),
			Indent(PathStyle.Render(s.ReleasePath), 1))
	} else {
		lines = append(lines, fmt.Sprintf("%s nothing deployed", MarkWarning))
	}
	lines = append(lines, MutedStyle.Render(fmt.Sprintf("%d release(s) on disk", len(s.Releases))))
	return r.println(strings.Join(lines, "\n"))
}

// Releases renders the releases on disk as a table
func (r *Renderer) Releases(releases []release.Release) error {
	if r.structured() {
		return r.encode(releases)
	}
	if len(releases) == 0 {
		return r.println(MutedStyle.Render("No releases found"))
	}

	data := pterm.TableData{{"", "REVISION", "MODIFIED", "PATH"}}
	for _, rel := range releases {
		marker := ""
		revision := rel.Revision
		if rel.Active {
			marker = "*"
			revision = ActiveStyle.Render(revision)
		}
		data = append(data, []string{marker, revision, rel.ModTime.Format(timeLayout), rel.Path})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	return r.println(table)
}

// Pruned renders the releases removed by a prune
func (r *Renderer) Pruned(removed []release.Release) error {
	if r.structured() {
		if removed == nil {
			removed = []release.Release{}
		}
		return r.encode(map[string]interface{}{"removed": removed})
	}
	if len(removed) == 0 {
		return r.println(MutedStyle.Render("Nothing to prune"))
	}

	lines := make([]string, 0, len(removed))
	for _, rel := range removed {
		lines = append(lines, fmt.Sprintf("%s removed %s", MarkInfo, RevisionStyle.Render(rel.Revision)))
	}
	return r.println(strings.Join(lines, "\n"))
}

// Error renders a failed command. Structured formats get the error code and
// the stage it failed in.
func (r *Renderer) Error(err error) error {
	if r.structured() {
		obj := map[string]string{
			"error": err.Error(),
			"code":  string(errors.GetErrorCode(err)),
		}
		if stage := errors.GetStage(err); stage != "" {
			obj["stage"] = stage
		}
		return r.encode(obj)
	}

	msg := fmt.Sprintf("%s %s", MarkError, err.Error())
	if stage := errors.GetStage(err); stage != "" {
		msg += "\n" + Indent(MutedStyle.Render("stage: "+stage), 1)
	}
	return r.println(msg)
}
