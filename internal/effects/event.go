package effects

import "strings"

// Kind discriminates the webhook payload families the bot handles. It is
// assigned from the X-GitHub-Event header at the boundary, never inferred
// from payload shape.
type Kind string

const (
	KindPullRequest  Kind = "pull_request"
	KindPush         Kind = "push"
	KindIssueComment Kind = "issue_comment"
)

// User is a GitHub user or organization account.
type User struct {
	Login string `json:"login"`
}

// Repository identifies the repository an event belongs to.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    User   `json:"owner"`
}

// Label is a label attached to a PR.
type Label struct {
	Name string `json:"name"`
}

// Branch is a PR head or base reference.
type Branch struct {
	Ref string `json:"ref"`
}

// PullRequest is the pull_request object inside a webhook payload.
type PullRequest struct {
	Number  int     `json:"number"`
	Title   string  `json:"title"`
	Body    string  `json:"body"`
	Merged  bool    `json:"merged"`
	HTMLURL string  `json:"html_url"`
	Head    Branch  `json:"head"`
	Base    Branch  `json:"base"`
	Labels  []Label `json:"labels"`
}

// PullRequestEvent is a pull_request webhook payload.
type PullRequestEvent struct {
	Action       string      `json:"action"`
	Number       int         `json:"number"`
	PullRequest  PullRequest `json:"pull_request"`
	Repository   Repository  `json:"repository"`
	Organization *User       `json:"organization"`
}

// Commit is the head_commit object of a push payload.
type Commit struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// PushEvent is a push webhook payload.
type PushEvent struct {
	Ref        string     `json:"ref"`
	Repository Repository `json:"repository"`
	HeadCommit *Commit    `json:"head_commit"`
}

// Issue is the issue object of an issue_comment payload. PullRequest is
// non-nil when the issue is actually a PR.
type Issue struct {
	Number      int `json:"number"`
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request"`
}

// Comment is a comment on an issue or PR.
type Comment struct {
	Body string `json:"body"`
}

// IssueCommentEvent is an issue_comment webhook payload.
type IssueCommentEvent struct {
	Action       string     `json:"action"`
	Issue        Issue      `json:"issue"`
	Comment      Comment    `json:"comment"`
	Repository   Repository `json:"repository"`
	Organization *User      `json:"organization"`
}

// Event is the tagged union handed to effects. Exactly one payload field
// matching Kind is set.
type Event struct {
	Kind         Kind
	PullRequest  *PullRequestEvent
	Push         *PushEvent
	IssueComment *IssueCommentEvent
}

// Owner returns the account owning the event's repository, preferring the
// organization login when present.
func (e *Event) Owner() string {
	switch e.Kind {
	case KindPullRequest:
		if e.PullRequest.Organization != nil && e.PullRequest.Organization.Login != "" {
			return e.PullRequest.Organization.Login
		}
		return e.PullRequest.Repository.Owner.Login
	case KindPush:
		return e.Push.Repository.Owner.Login
	case KindIssueComment:
		if e.IssueComment.Organization != nil && e.IssueComment.Organization.Login != "" {
			return e.IssueComment.Organization.Login
		}
		return e.IssueComment.Repository.Owner.Login
	}
	return ""
}

// Repo returns the event's repository name.
func (e *Event) Repo() string {
	switch e.Kind {
	case KindPullRequest:
		return e.PullRequest.Repository.Name
	case KindPush:
		return e.Push.Repository.Name
	case KindIssueComment:
		return e.IssueComment.Repository.Name
	}
	return ""
}

// PushBranch returns the branch name of a push event ref.
func (e *PushEvent) Branch() string {
	return strings.TrimPrefix(e.Ref, "refs/heads/")
}
