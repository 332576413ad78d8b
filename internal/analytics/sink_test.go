package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type emitted struct {
	name   string
	params map[string]any
}

func TestBufferedSink_QueuesUntilReady(t *testing.T) {
	var got []emitted
	sink := NewBufferedSink(func(name string, params map[string]any) {
		got = append(got, emitted{name: name, params: params})
	})

	sink.Emit("page_view", map[string]any{"page_path": "/"})
	sink.Emit("view_item_list", map[string]any{"item_list_id": "homepage_products"})
	require.Empty(t, got, "nothing reaches the runtime before it is ready")

	sink.Ready()
	require.Len(t, got, 2)
	require.Equal(t, "page_view", got[0].name, "queued events flush in arrival order")
	require.Equal(t, "view_item_list", got[1].name)

	sink.Emit("view_item", map[string]any{})
	require.Len(t, got, 3, "after readiness events pass straight through")
}

func TestBufferedSink_NilEmitNeverPanics(t *testing.T) {
	sink := NewBufferedSink(nil)

	require.NotPanics(t, func() {
		sink.Emit("page_view", nil)
		sink.Ready()
		sink.Emit("view_item", nil)
	})
}
