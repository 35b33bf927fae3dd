package permissions

import (
	"context"
	"errors"
	"strings"
)

// Action is the verb half of a "resource:action" permission.
type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionPublish Action = "publish"
)

// Archive resources guarded by editor groups.
const (
	ResourcePages     = "pages"
	ResourceAuthors   = "authors"
	ResourceMemorials = "memorials"
	ResourceTags      = "tags"
	ResourceMedia     = "media"
)

// Editor groups.
const (
	GroupAdmin    = "ADMIN"
	GroupEditor   = "EDITOR"
	GroupReadOnly = "READONLY"
)

var ErrPermissionDenied = errors.New("permissions: denied")

// Error names the permission that was refused.
type Error struct {
	Permission string
}

func (e Error) Error() string {
	if e.Permission == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Permission
}

func (e Error) Unwrap() error {
	return ErrPermissionDenied
}

// Join builds the permission token for an action on a resource.
func Join(resource string, action Action) string {
	resource = normalize(resource)
	verb := normalize(string(action))
	if resource == "" || verb == "" {
		return ""
	}
	return resource + ":" + verb
}

// Checker answers permission questions for one caller.
type Checker interface {
	Allowed(permission string) bool
}

type CheckerFunc func(permission string) bool

func (fn CheckerFunc) Allowed(permission string) bool {
	return fn(permission)
}

// groupActions is what each group may do on archive content. Membership in
// READONLY overrides every other group.
var groupActions = map[string]map[Action]bool{
	GroupAdmin:    {ActionRead: true, ActionCreate: true, ActionUpdate: true, ActionDelete: true, ActionPublish: true},
	GroupEditor:   {ActionRead: true, ActionCreate: true, ActionUpdate: true, ActionDelete: true, ActionPublish: true},
	GroupReadOnly: {ActionRead: true},
}

// GroupChecker grants the union of the group actions. No groups means a
// system caller (commands, the CLI) and everything is allowed; unknown
// groups grant nothing.
func GroupChecker(groups ...string) Checker {
	normalized := make([]string, 0, len(groups))
	readOnly := false
	for _, group := range groups {
		group = strings.ToUpper(strings.TrimSpace(group))
		if group == "" {
			continue
		}
		if group == GroupReadOnly {
			readOnly = true
		}
		normalized = append(normalized, group)
	}
	if len(normalized) == 0 {
		return CheckerFunc(func(string) bool { return true })
	}
	if readOnly {
		normalized = []string{GroupReadOnly}
	}
	return CheckerFunc(func(permission string) bool {
		action := actionOf(permission)
		for _, group := range normalized {
			if groupActions[group][action] {
				return true
			}
		}
		return false
	})
}

type checkerKey struct{}

// WithChecker stores a permission checker on the context.
func WithChecker(ctx context.Context, checker Checker) context.Context {
	if ctx == nil || checker == nil {
		return ctx
	}
	return context.WithValue(ctx, checkerKey{}, checker)
}

// WithGroups stores a group based checker on the context.
func WithGroups(ctx context.Context, groups ...string) context.Context {
	return WithChecker(ctx, GroupChecker(groups...))
}

func checkerFrom(ctx context.Context) Checker {
	if ctx == nil {
		return nil
	}
	checker, _ := ctx.Value(checkerKey{}).(Checker)
	return checker
}

// Allowed reports whether the context may use permission.
func Allowed(ctx context.Context, permission string) bool {
	return Require(ctx, permission) == nil
}

// Require checks permission against the context checker. A context without
// a checker is not restricted.
func Require(ctx context.Context, permission string) error {
	permission = normalize(permission)
	if permission == "" {
		return nil
	}
	if checker := checkerFrom(ctx); checker != nil && !checker.Allowed(permission) {
		return Error{Permission: permission}
	}
	return nil
}

// Authorize checks an action on resource for an actor in groups and then
// for the caller on ctx. Services call it before every write.
func Authorize(ctx context.Context, groups []string, resource string, action Action) error {
	permission := Join(resource, action)
	if !GroupChecker(groups...).Allowed(permission) {
		return Error{Permission: permission}
	}
	return Require(ctx, permission)
}

func actionOf(permission string) Action {
	_, action, ok := strings.Cut(normalize(permission), ":")
	if !ok {
		return ""
	}
	return Action(action)
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
