package stream

import (
	"context"
	"fmt"
	"testing"

	"github.com/shpandrak/shpanzip"
	"github.com/stretchr/testify/require"
)

func ExampleFromChannel() {
	type tstLogEvent struct {
		Level string
		Msg   string
	}

	ch := make(chan tstLogEvent, 3)
	go func() {
		ch <- tstLogEvent{Level: "info", Msg: "Oh yes1"}
		ch <- tstLogEvent{Level: "error", Msg: "Oh no1"}
		ch <- tstLogEvent{Level: "info", Msg: "Oh yes2"}
		ch <- tstLogEvent{Level: "error", Msg: "Oh no2"}

		// Closing the channel to signal the stream is done
		close(ch)
	}()

	// Numbering the events by zipping them with an endless counter
	counter := NewSimpleStream(func() ProviderFunc[int] {
		i := 0
		return func(_ context.Context) (int, error) {
			i++
			return i, nil
		}
	})

	// Output:
	// [1:Oh yes1 2:Oh no1 3:Oh yes2 4:Oh no2]
	fmt.Println(Zip(
		counter,
		FromChannel(ch),
		func(i int, e tstLogEvent) string {
			return fmt.Sprintf("%d:%s", i, e.Msg)
		},
	).MustCollect())
}

func TestFromChannel_Cancellation(t *testing.T) {
	ch := make(chan int)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FromChannel(ch).Collect(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFromChannel_NilChannel(t *testing.T) {
	_, err := FromChannel[int](nil).Collect(context.Background())
	require.ErrorIs(t, err, ErrInvalidArgument)

	// The invalid source surfaces when the zip is materialized
	_, err = ZipToTuple[int, int](FromChannel[int](nil), Just(1)).Collect(context.Background())
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFromChannel_ZippedWithShorterStream(t *testing.T) {
	ch := make(chan string, 3)
	ch <- "a"
	ch <- "b"
	ch <- "c"
	close(ch)

	res := ZipToTuple[int, string](Just(1, 2), FromChannel(ch)).MustCollect()
	require.Equal(t, []shpanzip.Tuple2[int, string]{{A: 1, B: "a"}, {A: 2, B: "b"}}, res)

	// The channel was never read past the shorter stream
	require.Equal(t, "c", <-ch)
}
