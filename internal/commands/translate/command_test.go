// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package translate

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tombee/exprmigrate/internal/commands/shared"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(shared.ResetFlagsForTest)

	root := &cobra.Command{Use: "exprmigrate", SilenceUsage: true, SilenceErrors: true}
	_, _, jsonPtr, _ := shared.RegisterFlagPointers()
	root.PersistentFlags().BoolVar(jsonPtr, "json", false, "JSON output")
	root.AddCommand(NewCommand())

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"translate"}, args...))

	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()
	assert.Equal(t, "translate [expression...]", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("verify"))
}

func TestTranslate_Args(t *testing.T) {
	out, _, err := execute(t, "",
		"ERROR if t1>11 else OK",
		"ERROR if t1>0 or t2>0 else OK",
	)
	require.NoError(t, err)
	assert.Equal(t, "(t1 > 11) ? ERROR : OK\nt1 > 0 ? ERROR : OK\n", out)
}

func TestTranslate_Stdin(t *testing.T) {
	stdin := "ERROR if t1>1 else WARN if t1>0 else OK\r\n\n   \nKOKO if t6<t7 else OKOK\n"
	out, _, err := execute(t, stdin, "--verify")
	require.NoError(t, err)
	assert.Equal(t, "(t1 > 1) ? ERROR : ((t1 > 0) ? WARN : OK)\n(t6 < t7) ? KOKO : OKOK\n", out)
}

func TestTranslate_EmptyStdin(t *testing.T) {
	_, _, err := execute(t, "\n\n")
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCode(err))
}

func TestTranslate_Failure(t *testing.T) {
	out, errOut, err := execute(t, "", "ERROR if t1>1 else OK", "kokoko")
	require.Error(t, err)

	var exitErr *shared.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, shared.ExitConvertFailed, exitErr.Code)
	assert.Contains(t, exitErr.Error(), "1 of 2")

	assert.Equal(t, "(t1 > 1) ? ERROR : OK\n", out)
	assert.Contains(t, errOut, `"kokoko"`)
}

func TestTranslate_JSON(t *testing.T) {
	out, _, err := execute(t, "", "--json", "ERROR if t1>1 else OK", "ERROR if t1 $ 1 else OK")
	assert.Equal(t, shared.ExitConvertFailed, shared.ExitCode(err))

	var resp struct {
		Command string `json:"command"`
		Success bool   `json:"success"`
		Results []struct {
			Source string `json:"source"`
			Target string `json:"target"`
			Error  *struct {
				Code     string `json:"code"`
				Kind     string `json:"kind"`
				Location *struct {
					Line   int `json:"line"`
					Column int `json:"column"`
				} `json:"location"`
			} `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "translate", resp.Command)
	assert.False(t, resp.Success)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "(t1 > 1) ? ERROR : OK", resp.Results[0].Target)
	assert.Nil(t, resp.Results[0].Error)

	require.NotNil(t, resp.Results[1].Error)
	assert.Equal(t, shared.ErrorCodeSyntax, resp.Results[1].Error.Code)
	assert.Equal(t, "syntax", resp.Results[1].Error.Kind)
	require.NotNil(t, resp.Results[1].Error.Location)
	assert.Equal(t, 13, resp.Results[1].Error.Location.Column)
}
