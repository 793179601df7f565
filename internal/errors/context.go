/**
 * Error Context
 *
 * Metadata attached to an error occurrence: the operation and component it
 * happened in, plus optional user/session identity. Pure value object;
 * updates always produce a new Context.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-12
 */

package errors

// Context describes where and for whom an operation was running when it
// failed. Never mutated after construction.
type Context struct {
	// Operation is the logical name of the failing operation
	Operation string

	// Component is the subsystem that invoked the operation
	Component string

	// UserID identifies the user, when known
	UserID string

	// SessionID identifies the session, when known
	SessionID string

	// Metadata carries additional key/value details
	Metadata map[string]interface{}
}

// NewContext creates a context for an operation within a component.
func NewContext(operation, component string) *Context {
	return &Context{
		Operation: operation,
		Component: component,
	}
}

// clone returns a deep copy so With* methods never alias the original.
func (c *Context) clone() *Context {
	if c == nil {
		return &Context{}
	}
	out := &Context{
		Operation: c.Operation,
		Component: c.Component,
		UserID:    c.UserID,
		SessionID: c.SessionID,
	}
	if c.Metadata != nil {
		out.Metadata = make(map[string]interface{}, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// WithUser returns a copy carrying user and session identity.
func (c *Context) WithUser(userID, sessionID string) *Context {
	out := c.clone()
	out.UserID = userID
	out.SessionID = sessionID
	return out
}

// WithMeta returns a copy with an additional metadata entry.
func (c *Context) WithMeta(key string, value interface{}) *Context {
	out := c.clone()
	if out.Metadata == nil {
		out.Metadata = make(map[string]interface{}, 1)
	}
	out.Metadata[key] = value
	return out
}
