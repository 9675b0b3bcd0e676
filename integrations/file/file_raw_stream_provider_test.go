package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/shpandrak/shpanzip/stream"
	"github.com/stretchr/testify/require"
)

type characterInfo struct {
	Name   string
	Height float64
}

func parseCharacter(line []byte) (characterInfo, error) {
	var ret characterInfo
	// Split the line by comma
	parts := strings.Split(string(line), ",")
	if len(parts) != 2 || parts[0] == "" {
		return ret, fmt.Errorf("invalid line: %s", string(line))
	}
	ret.Name = parts[0]

	height, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return ret, fmt.Errorf("invalid height: %s", parts[1])
	}
	ret.Height = height
	return ret, nil
}

func ExampleStreamFromFile() {
	tallest, err := stream.Reduce(
		context.Background(),
		stream.MapWithErr(
			StreamFromFile("testdata/xmen-heights.csv").
				// Skip the header
				Skip(1),
			parseCharacter,
		),
		characterInfo{Name: "None", Height: 0},
		func(acc characterInfo, curr characterInfo) characterInfo {
			if curr.Height > acc.Height {
				return curr
			}
			return acc
		},
	)
	if err != nil {
		panic(err)
	}

	// Output: Colossus
	fmt.Println(tallest.Name)
}

func TestStreamFromFile_ZipLines(t *testing.T) {
	heroes := stream.MapWithErr(StreamFromFile("testdata/xmen-heights.csv").Skip(1), parseCharacter)
	powers := StreamLinesFromFile("testdata/xmen-powers.txt")

	res := stream.Zip(heroes, powers, func(c characterInfo, power string) string {
		return c.Name + ":" + power
	}).MustCollect()

	// Lines are copied out of the scanner buffer, so collected lines stay intact
	require.Equal(t, []string{"Wolverine:claws", "Colossus:steel", "Storm:weather"}, res)
}

func TestStreamFromFile_MissingFileIsEmpty(t *testing.T) {
	require.Empty(t, StreamFromFile(filepath.Join(t.TempDir(), "nope.txt")).MustCollect())

	// An empty file zipped with anything is empty, but it is still opened since it is not known to be empty
	require.Empty(t, stream.ZipToTuple(StreamFromFile("testdata/nope.txt"), stream.Just(1, 2)).MustCollect())
}

func TestStreamFromFile_ReadEveryExecution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0o600))

	s := StreamLinesFromFile(path)
	require.Equal(t, []string{"a", "b"}, s.MustCollect())

	require.NoError(t, os.WriteFile(path, []byte("c\n"), 0o600))
	require.Equal(t, []string{"c"}, s.MustCollect())
}

func TestStreamFromFile_ReadFailure(t *testing.T) {
	// A directory can be opened, but not read
	_, err := StreamFromFile(t.TempDir()).Collect(context.Background())
	require.ErrorContains(t, err, "failed reading stream file")
}
