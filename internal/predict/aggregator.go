package predict

import (
	"fmt"

	"sentidash/internal/platform"
	"sentidash/internal/result"
)

// Merge applies a dispatch response to state and returns the new state. The
// input state is never modified. On error the returned state is state itself.
//
// SinglePlatform replaces that platform wholesale, combined label included.
// AllPlatforms replaces all four platforms with their combined label forced to
// "" and clears the global combined label. GlobalCombined sets only the global
// combined label.
func Merge(state result.AggregateState, mode RequestMode, resp RawResponse) (result.AggregateState, error) {
	switch m := mode.(type) {
	case SinglePlatform:
		r, ok := resp.(SingleResponse)
		if !ok {
			return state, shapeError(mode, resp)
		}
		if !m.Platform.Valid() {
			return state, fmt.Errorf("%w: %q", platform.ErrUnknown, m.Platform)
		}
		return state.WithPlatform(m.Platform, r.Result), nil
	case AllPlatforms:
		r, ok := resp.(BundleResponse)
		if !ok {
			return state, shapeError(mode, resp)
		}
		results := make(map[platform.ID]result.PlatformResult, len(platform.All()))
		for _, id := range platform.All() {
			pr := r.Results[id]
			pr.Combined = ""
			results[id] = pr
		}
		return state.WithPlatforms(results).WithoutGlobalCombined(), nil
	case GlobalCombined:
		r, ok := resp.(GlobalResponse)
		if !ok {
			return state, shapeError(mode, resp)
		}
		return state.WithGlobalCombined(r.Combined), nil
	default:
		return state, fmt.Errorf("unsupported request mode %T", mode)
	}
}

func shapeError(mode RequestMode, resp RawResponse) error {
	return fmt.Errorf("response %T does not match mode %s", resp, mode.Target())
}
