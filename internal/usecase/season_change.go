package usecase

import "context"

// SeasonChangeFunc is called after a committed write that can change a
// season's standings.
type SeasonChangeFunc func(ctx context.Context, seasonID string)

type seasonHooks struct {
	fns []SeasonChangeFunc
}

// OnSeasonChange registers fn. Registration is not safe once the service
// is in use.
func (h *seasonHooks) OnSeasonChange(fn SeasonChangeFunc) {
	if fn != nil {
		h.fns = append(h.fns, fn)
	}
}

func (h *seasonHooks) notify(ctx context.Context, seasonID string) {
	if seasonID == "" {
		return
	}
	for _, fn := range h.fns {
		fn(ctx, seasonID)
	}
}
