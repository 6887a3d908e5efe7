package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var tabListing = []string{
	"Field\tType\tNull\tKey\tDefault\tExtra",
	"id\tint(11)\tNO\tPRI\tNULL\tauto_increment",
	"name\tvarchar(255)\tYES\t\tNULL\t",
	"status\tenum('new','active','closed')\tNO\t\tnew\t",
	"",
}

func TestColumnsTabDelimited(t *testing.T) {
	cols, err := Columns(tabListing)
	require.NoError(t, err)
	require.Len(t, cols, 3)

	require.Equal(t, "id", cols[0].Field)
	require.Equal(t, "int(11)", cols[0].Type)
	require.Equal(t, "NO", cols[0].Null)
	require.Equal(t, "PRI", cols[0].Key)
	require.Nil(t, cols[0].Default)
	require.Equal(t, "auto_increment", cols[0].Extra)

	require.Equal(t, "name", cols[1].Field)
	require.Equal(t, "YES", cols[1].Null)
	require.Equal(t, "", cols[1].Key)

	require.NotNil(t, cols[2].Default)
	require.Equal(t, "new", *cols[2].Default)
}

func TestColumnsPipeDelimited(t *testing.T) {
	lines := []string{
		"+-------+--------------+------+-----+---------+-------+",
		"| Field | Type         | Null | Key | Default | Extra |",
		"+-------+--------------+------+-----+---------+-------+",
		"| id    | int(11)      | NO   | PRI | NULL    |       |",
		"| name  | varchar(255) | YES  |     | NULL    |       |",
		"+-------+--------------+------+-----+---------+-------+",
		"",
	}
	cols, err := Columns(lines)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	require.Equal(t, "id", cols[0].Field)
	require.Nil(t, cols[0].Default)
	require.Equal(t, "name", cols[1].Field)
	require.Equal(t, "varchar(255)", cols[1].Type)
}

func TestColumnsSkipsNoise(t *testing.T) {
	lines := append([]string{
		"Warning: Using a password on the command line interface can be insecure.",
		"",
	}, tabListing...)
	cols, err := Columns(lines)
	require.NoError(t, err)
	require.Len(t, cols, 3)
}

func TestColumnsHeaderless(t *testing.T) {
	// batch output with the header stripped still classifies data rows
	cols, err := Columns(tabListing[1:])
	require.NoError(t, err)
	require.Len(t, cols, 3)
	require.Equal(t, "id", cols[0].Field)
}

func TestColumnsSpaceAligned(t *testing.T) {
	// header positions fix the column starts; empty Key and Extra
	// cells must survive instead of collapsing the row
	lines := []string{
		"Field   Type          Null  Key  Default  Extra",
		"id      int(11)       NO    PRI  NULL     auto_increment",
		"name    varchar(255)  YES        NULL",
	}
	cols, err := Columns(lines)
	require.NoError(t, err)
	require.Len(t, cols, 2)

	require.Equal(t, "id", cols[0].Field)
	require.Equal(t, "PRI", cols[0].Key)
	require.Equal(t, "auto_increment", cols[0].Extra)

	require.Equal(t, "name", cols[1].Field)
	require.Equal(t, "varchar(255)", cols[1].Type)
	require.Equal(t, "YES", cols[1].Null)
	require.Equal(t, "", cols[1].Key)
	require.Nil(t, cols[1].Default)
	require.Equal(t, "", cols[1].Extra)
}

func TestColumnsNoRows(t *testing.T) {
	_, err := Columns([]string{"nothing to see here", ""})
	require.ErrorIs(t, err, ErrNoRows)

	_, err = Columns(nil)
	require.ErrorIs(t, err, ErrNoRows)
}

func TestColumnsRejectsBogusTypeToken(t *testing.T) {
	_, err := Columns([]string{"id\tnotatype(11)\tNO\tPRI\tNULL\t"})
	require.ErrorIs(t, err, ErrNoRows)
}

func TestRead(t *testing.T) {
	cols, err := Read(strings.NewReader(strings.Join(tabListing, "\n")))
	require.NoError(t, err)
	require.Len(t, cols, 3)
}

func TestSourceOrderPreserved(t *testing.T) {
	lines := []string{
		"Field\tType\tNull\tKey\tDefault\tExtra",
		"zzz\tint\tNO\t\tNULL\t",
		"aaa\tint\tNO\t\tNULL\t",
		"mmm\tint\tNO\t\tNULL\t",
	}
	cols, err := Columns(lines)
	require.NoError(t, err)
	require.Equal(t, []string{"zzz", "aaa", "mmm"},
		[]string{cols[0].Field, cols[1].Field, cols[2].Field})
}
