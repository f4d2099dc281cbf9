package helpers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidChoice is returned when a numbered pick is out of range.
var ErrInvalidChoice = errors.New("invalid choice")

// PromptForYesNo asks a yes/no question. Empty input yields defaultValue.
func PromptForYesNo(out io.Writer, reader *bufio.Reader, promptText string, defaultValue bool) (bool, error) {
	fmt.Fprintf(out, "%s [%s]: ", promptText, yesNoLabel(defaultValue))

	line, err := readLine(reader)
	if err != nil {
		return false, err
	}
	line = strings.ToLower(line)
	if line == "" {
		return defaultValue, nil
	}
	return line == "y" || line == "yes", nil
}

// PromptForConfirmation asks a question that defaults to No.
func PromptForConfirmation(out io.Writer, reader *bufio.Reader, question string) (bool, error) {
	return PromptForYesNo(out, reader, question, false)
}

// PromptForIndex prints a numbered list and reads a 1-based choice.
// Empty input selects the first option. The returned index is 0-based.
func PromptForIndex(out io.Writer, reader *bufio.Reader, promptText string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, ErrInvalidChoice
	}
	for i, option := range options {
		fmt.Fprintf(out, "  %2d) %s\n", i+1, option)
	}
	fmt.Fprintf(out, "%s [1-%d]: ", promptText, len(options))

	line, err := readLine(reader)
	if err != nil {
		return -1, err
	}
	if line == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(options) {
		return -1, fmt.Errorf("%w: %q", ErrInvalidChoice, line)
	}
	return n - 1, nil
}

// readLine returns the trimmed line. EOF after partial input is not an error.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func yesNoLabel(defaultIsYes bool) string {
	if defaultIsYes {
		return "Y/n"
	}
	return "y/N"
}
