package grading

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// commentClearToken empties the pending comment during an edit, since blank
// input means "keep".
const commentClearToken = "-"

// TerminalOperator implements Operator on a line-oriented terminal. All
// prompt loops live here: the policy engine only ever sees valid answers.
type TerminalOperator struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewTerminalOperator(in io.Reader, out io.Writer) *TerminalOperator {
	return &TerminalOperator{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

func (t *TerminalOperator) readLine() (string, error) {
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(t.in.Text()), nil
}

func (t *TerminalOperator) ChooseAction(grade float64, comment string) (OperatorAction, error) {
	fmt.Fprintf(t.out, "\nProposed grade: %s\n", strconv.FormatFloat(grade, 'f', -1, 64))
	if comment != "" {
		fmt.Fprintf(t.out, "Proposed comment: %s\n", comment)
	} else {
		fmt.Fprintln(t.out, "Proposed comment: (none)")
	}

	for {
		fmt.Fprint(t.out, "[a]ccept / [e]dit / [m]anual: ")
		line, err := t.readLine()
		if err != nil {
			return 0, err
		}
		switch strings.ToLower(line) {
		case "a", "accept":
			return OperatorAccept, nil
		case "e", "edit":
			return OperatorEdit, nil
		case "m", "manual":
			return OperatorManual, nil
		}
		fmt.Fprintln(t.out, "Please answer a, e or m.")
	}
}

func (t *TerminalOperator) ReadGradeOverride(current float64) (float64, error) {
	for {
		fmt.Fprintf(t.out, "New grade [%s]: ", strconv.FormatFloat(current, 'f', -1, 64))
		line, err := t.readLine()
		if err != nil {
			return 0, err
		}
		if line == "" {
			return current, nil
		}
		grade, err := strconv.ParseFloat(line, 64)
		if err != nil {
			fmt.Fprintf(t.out, "Not a number: %q\n", line)
			continue
		}
		return grade, nil
	}
}

func (t *TerminalOperator) ReadCommentOverride(current string) (string, error) {
	fmt.Fprintf(t.out, "New comment (blank keeps, %q clears): ", commentClearToken)
	line, err := t.readLine()
	if err != nil {
		return "", err
	}
	switch line {
	case "":
		return current, nil
	case commentClearToken:
		return "", nil
	default:
		return line, nil
	}
}

func (t *TerminalOperator) ConfirmYesNo(prompt string) (bool, error) {
	for {
		fmt.Fprintf(t.out, "%s [y/n]: ", prompt)
		line, err := t.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(t.out, "Please answer y or n.")
	}
}
