package mysql

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stub wires canned responses per statement prefix into the client.
func stub(t *testing.T, responses map[string]string, fail map[string]error) *Client {
	t.Helper()
	c := NewClient("mysql", "appdb", time.Second, zap.NewNop())
	c.run = func(_ context.Context, bin string, args ...string) ([]byte, []byte, error) {
		require.Equal(t, "mysql", bin)
		require.Equal(t, []string{"appdb", "-e"}, args[:2])
		stmt := args[len(args)-1]
		for prefix, err := range fail {
			if strings.HasPrefix(stmt, prefix) {
				return nil, []byte("ERROR 1146 (42S02): something went wrong"), err
			}
		}
		for prefix, out := range responses {
			if strings.HasPrefix(stmt, prefix) {
				return []byte(out), nil, nil
			}
		}
		t.Fatalf("unexpected statement: %s", stmt)
		return nil, nil, nil
	}
	return c
}

const showColumnsOut = "Field\tType\tNull\tKey\tDefault\tExtra\n" +
	"id\tint(11)\tNO\tPRI\tNULL\tauto_increment\n" +
	"name\tvarchar(255)\tYES\t\tNULL\t\n"

func TestFetchColumns(t *testing.T) {
	c := stub(t, map[string]string{"SHOW COLUMNS": showColumnsOut}, nil)
	cols, err := c.FetchColumns(context.Background(), "users")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	require.Equal(t, "id", cols[0].Field)
	require.Equal(t, "PRI", cols[0].Key)
	require.Equal(t, "varchar(255)", cols[1].Type)
}

func TestFetchColumnsToolError(t *testing.T) {
	failure := errors.New("exit status 1")
	c := stub(t, nil, map[string]error{"SHOW COLUMNS": failure})

	_, err := c.FetchColumns(context.Background(), "users")
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	require.Contains(t, toolErr.Error(), "ERROR 1146")
	require.ErrorIs(t, err, failure)
}

func TestFetchColumnsUnparseable(t *testing.T) {
	c := stub(t, map[string]string{"SHOW COLUMNS": "garbage output\n"}, nil)
	_, err := c.FetchColumns(context.Background(), "users")
	require.Error(t, err)
	require.Contains(t, err.Error(), "users")
}

func TestFetchStats(t *testing.T) {
	c := stub(t, map[string]string{
		"SELECT COUNT(*)":    "COUNT(*)\n42\n",
		"SELECT data_length": "data_length + index_length\n16384\n",
		"SHOW INDEX": "Table\tNon_unique\tKey_name\tSeq_in_index\tColumn_name\tCollation\n" +
			"users\t0\tPRIMARY\t1\tid\tA\n" +
			"users\t1\tidx_name\t1\tname\tA\n",
	}, nil)

	stats := c.FetchStats(context.Background(), "users")
	require.NotNil(t, stats.Rows)
	require.EqualValues(t, 42, *stats.Rows)
	require.NotNil(t, stats.DataBytes)
	require.EqualValues(t, 16384, *stats.DataBytes)
	require.Equal(t, 2, stats.IndexCount())
	require.Equal(t, "PRIMARY", stats.Indexes[0].Name)
	require.True(t, stats.Indexes[0].Unique)
	require.Equal(t, "idx_name", stats.Indexes[1].Name)
	require.False(t, stats.Indexes[1].Unique)
}

// A single failing statistics query degrades its figure only.
func TestFetchStatsDegrades(t *testing.T) {
	c := stub(t, map[string]string{
		"SELECT data_length": "data_length + index_length\n16384\n",
		"SHOW INDEX":         "Table\tNon_unique\tKey_name\tSeq_in_index\tColumn_name\n",
	}, map[string]error{"SELECT COUNT(*)": errors.New("exit status 1")})

	stats := c.FetchStats(context.Background(), "users")
	require.Nil(t, stats.Rows)
	require.NotNil(t, stats.DataBytes)
	require.Empty(t, stats.Indexes)
}

func TestToolErrorNotFound(t *testing.T) {
	e := &ToolError{Bin: "mysql", Err: fmt.Errorf("exec: %w", exec.ErrNotFound)}
	require.Equal(t, "mysql client not found in PATH", e.Error())
}
