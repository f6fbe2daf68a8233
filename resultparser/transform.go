package resultparser

import "github.com/MasterOfBinary/gopage/pagingstate"

// TransformFunc converts one raw item produced by a fetch response into the
// value that should be appended to a PagingState's Items.
type TransformFunc func(item any) (any, error)

// WithItemTransform wraps a Parser so that every item it produces passes
// through fn first. If fn returns an error for any item in a state's batch,
// that error is returned from Parse (stopping the whole batch), mirroring
// the teacher's Transform processor's StopOnError=true mode — a parse-time
// transform failure is a ParseFailure for the batch, not a partial one.
func WithItemTransform(p Parser, fn TransformFunc) Parser {
	if fn == nil {
		return p
	}

	return ParserFunc(func(resp any, batch []*pagingstate.PagingState) (BatchResult, error) {
		result, err := p.Parse(resp, batch)
		if err != nil {
			return result, err
		}

		for key, items := range result.Items {
			transformed := make([]any, len(items))
			for i, item := range items {
				v, err := fn(item)
				if err != nil {
					return result, err
				}
				transformed[i] = v
			}
			result.Items[key] = transformed
		}

		return result, nil
	})
}
