package checkout

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/logging"
	"github.com/rs/zerolog"
)

var (
	fullRevisionPattern  = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)
	shortRevisionPattern = regexp.MustCompile(`^[0-9a-fA-F]{4,39}$`)
)

// Git resolves and checks out revisions of a git repository. The repository
// may be anything git can clone from: a URL, a local path or a bundle file.
type Git struct {
	repository string
	gitPath    string
	logger     zerolog.Logger
}

// NewGit creates a provider for repository
func NewGit(repository string) *Git {
	return &Git{
		repository: repository,
		gitPath:    "git",
		logger:     logging.GetLogger("checkout.git"),
	}
}

// Resolve turns a branch, tag or symbolic ref into a full commit id using
// `git ls-remote`. Full 40 character ids are returned lowercased without
// contacting the repository. An abbreviated id that names no ref is expanded
// from a temporary bare clone, since ls-remote only lists refs.
func (g *Git) Resolve(ctx context.Context, spec string) (string, error) {
	if spec == "" {
		spec = "HEAD"
	}
	if fullRevisionPattern.MatchString(spec) {
		return strings.ToLower(spec), nil
	}

	out, err := g.git(ctx, "", "ls-remote", g.repository, spec)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrResolution,
			"failed to list refs of %s", g.repository).
			WithDetail("spec", spec)
	}

	refs := parseLsRemote(out)
	for _, candidate := range []string{
		"refs/tags/" + spec + "^{}",
		"refs/tags/" + spec,
		"refs/heads/" + spec,
		spec,
	} {
		if sha, ok := refs[candidate]; ok {
			g.logger.Debug().
				Str("spec", spec).
				Str("ref", candidate).
				Str("revision", sha).
				Msg("Resolved revision")
			return sha, nil
		}
	}

	if shortRevisionPattern.MatchString(spec) {
		return g.expand(ctx, spec)
	}

	return "", errors.Newf(errors.ErrResolution,
		"revision %q not found in %s", spec, g.repository).
		WithDetail("spec", spec)
}

// Checkout clones the repository into dest and detaches HEAD at revision.
// A failed checkout leaves dest as git left it.
func (g *Git) Checkout(ctx context.Context, revision, dest string) error {
	g.logger.Info().
		Str("repository", g.repository).
		Str("revision", revision).
		Str("dest", dest).
		Msg("Checking out revision")

	if _, err := g.git(ctx, "", "clone", "--quiet", "--no-checkout", g.repository, dest); err != nil {
		return errors.Wrapf(err, errors.ErrCheckout, "failed to clone %s", g.repository)
	}
	if _, err := g.git(ctx, dest, "checkout", "--quiet", "--detach", revision); err != nil {
		return errors.Wrapf(err, errors.ErrCheckout, "failed to check out %s", revision)
	}
	return nil
}

// expand resolves an abbreviated commit id against a bare clone
func (g *Git) expand(ctx context.Context, short string) (string, error) {
	tmp, err := os.MkdirTemp("", "deployrev-resolve-")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrResolution, "failed to create scratch directory").
			WithDetail("spec", short)
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			g.logger.Warn().Err(err).Str("path", tmp).Msg("Failed to remove scratch clone")
		}
	}()

	if _, err := g.git(ctx, "", "clone", "--quiet", "--bare", g.repository, tmp); err != nil {
		return "", errors.Wrapf(err, errors.ErrResolution, "failed to clone %s", g.repository).
			WithDetail("spec", short)
	}
	out, err := g.git(ctx, tmp, "rev-parse", "--verify", "--quiet", short+"^{commit}")
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrResolution,
			"revision %q not found in %s", short, g.repository).
			WithDetail("spec", short)
	}

	sha := strings.TrimSpace(out)
	g.logger.Debug().
		Str("spec", short).
		Str("revision", sha).
		Msg("Expanded abbreviated revision")
	return sha, nil
}

func (g *Git) git(ctx context.Context, dir string, args ...string) (string, error) {
	logging.LogCommand(g.gitPath+" "+strings.Join(args, " "), dir)

	cmd := exec.CommandContext(ctx, g.gitPath, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, errors.ErrInternal, "git %s", args[0]).
			WithDetail("stderr", strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// parseLsRemote maps ref names to commit ids
func parseLsRemote(out string) map[string]string {
	refs := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		refs[fields[1]] = fields[0]
	}
	return refs
}
