package dispatch

import (
	"context"

	"filterbridge/internal/protocol"
)

// Handler is one of FireAndForget, SyncReturn or AsyncPush.
type Handler interface {
	Reply() protocol.ReplyKind
}

// FireAndForget performs a command that sends nothing back.
type FireAndForget func(ctx context.Context, env *protocol.Envelope) error

// SyncReturn performs a command and returns the reply payload, which is
// written before the next inbound message is read.
type SyncReturn func(ctx context.Context, env *protocol.Envelope) (any, error)

// Job produces an asynchronous reply payload.
type Job func(ctx context.Context) (any, error)

// AsyncPush validates a command and returns the Job that computes its reply.
// The job runs on its own goroutine.
type AsyncPush func(ctx context.Context, env *protocol.Envelope) (Job, error)

func (FireAndForget) Reply() protocol.ReplyKind { return protocol.ReplyNone }

func (SyncReturn) Reply() protocol.ReplyKind { return protocol.ReplySync }

func (AsyncPush) Reply() protocol.ReplyKind { return protocol.ReplyAsync }

// Handlers returns the handler table for c.
func Handlers(c Collaborators) map[protocol.Tag]Handler {
	return map[protocol.Tag]Handler{
		protocol.TagInitializeOptions: SyncReturn(func(ctx context.Context, env *protocol.Envelope) (any, error) {
			snap, err := c.Snapshot.Build(ctx)
			if err != nil {
				return nil, collaboratorError(env, "build snapshot", err)
			}
			return snap, nil
		}),
		protocol.TagGetFiltersMetadata: SyncReturn(func(ctx context.Context, env *protocol.Envelope) (any, error) {
			meta, err := c.Categories.FiltersMetadata(ctx)
			if err != nil {
				return nil, collaboratorError(env, "filters metadata", err)
			}
			return meta, nil
		}),
		protocol.TagChangeSetting: FireAndForget(func(ctx context.Context, env *protocol.Envelope) error {
			p, err := decodePayload[protocol.ChangeSetting](env)
			if err != nil {
				return err
			}
			value, err := p.DecodedValue()
			if err != nil {
				return malformed(err)
			}
			return collaboratorError(env, "set property", c.Settings.SetProperty(ctx, *p.Key, value))
		}),
		protocol.TagEnableFilter: FireAndForget(func(ctx context.Context, env *protocol.Envelope) error {
			p, err := decodePayload[protocol.FilterRef](env)
			if err != nil {
				return err
			}
			return collaboratorError(env, "enable filters", c.Filters.AddAndEnableFilters(ctx, []int{*p.FilterID}))
		}),
		protocol.TagDisableFilter: FireAndForget(func(ctx context.Context, env *protocol.Envelope) error {
			p, err := decodePayload[protocol.FilterRef](env)
			if err != nil {
				return err
			}
			return collaboratorError(env, "disable filters", c.Filters.DisableFilters(ctx, []int{*p.FilterID}))
		}),
		protocol.TagEnableFilterGroup: FireAndForget(func(ctx context.Context, env *protocol.Envelope) error {
			p, err := decodePayload[protocol.GroupRef](env)
			if err != nil {
				return err
			}
			return collaboratorError(env, "enable filter group", c.Filters.AddAndEnableFiltersByGroupID(ctx, *p.GroupID))
		}),
		protocol.TagDisableFilterGroup: FireAndForget(func(ctx context.Context, env *protocol.Envelope) error {
			p, err := decodePayload[protocol.GroupRef](env)
			if err != nil {
				return err
			}
			return collaboratorError(env, "disable filter group", c.Filters.DisableAntiBannerFiltersByGroupID(ctx, *p.GroupID))
		}),
		protocol.TagGetWhitelist: SyncReturn(func(ctx context.Context, env *protocol.Envelope) (any, error) {
			domains, err := c.Whitelist.WhiteListDomains(ctx)
			if err != nil {
				return nil, collaboratorError(env, "whitelist domains", err)
			}
			return protocol.ContentReply(protocol.JoinLines(domains)), nil
		}),
		protocol.TagSaveWhitelist: FireAndForget(func(ctx context.Context, env *protocol.Envelope) error {
			p, err := decodePayload[protocol.Content](env)
			if err != nil {
				return err
			}
			domains := protocol.SplitLines(p.Text())
			return collaboratorError(env, "update whitelist", c.Whitelist.UpdateWhiteListDomains(ctx, domains))
		}),
		protocol.TagChangeWhitelistMode: FireAndForget(func(ctx context.Context, env *protocol.Envelope) error {
			p, err := decodePayload[protocol.WhitelistMode](env)
			if err != nil {
				return err
			}
			return collaboratorError(env, "change whitelist mode", c.Whitelist.ChangeDefaultWhiteListMode(ctx, *p.Enabled))
		}),
		protocol.TagGetUserRules: AsyncPush(func(_ context.Context, env *protocol.Envelope) (Job, error) {
			return func(ctx context.Context) (any, error) {
				text, err := c.UserRules.UserRulesText(ctx)
				if err != nil {
					return nil, collaboratorError(env, "user rules text", err)
				}
				return protocol.ContentReply(text), nil
			}, nil
		}),
		protocol.TagSaveUserRules: FireAndForget(func(ctx context.Context, env *protocol.Envelope) error {
			p, err := decodePayload[protocol.Content](env)
			if err != nil {
				return err
			}
			return collaboratorError(env, "update user rules", c.UserRules.UpdateUserRulesText(ctx, p.Text()))
		}),
	}
}

type validator interface {
	Validate() error
}

func decodePayload[T validator](env *protocol.Envelope) (T, error) {
	var payload T
	if err := env.Decode(&payload); err != nil {
		return payload, malformed(err)
	}
	if err := payload.Validate(); err != nil {
		return payload, malformed(err)
	}
	return payload, nil
}
