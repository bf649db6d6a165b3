package cmd

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/cxde-rxnin/carekeep/internal/wizard"
)

// wizardField pairs an engine field name with its terminal presentation.
type wizardField struct {
	name   string
	label  string
	secret bool
}

// wizardPage mirrors one engine step, index for index.
type wizardPage struct {
	title  string
	fields []wizardField
}

var stdin = bufio.NewReader(os.Stdin)

func readLine(label string) (string, error) {
	fmt.Printf("%s ", labelStyle.Render(label+":"))
	line, err := stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func readPassword(label string) (string, error) {
	fmt.Printf("%s ", labelStyle.Render(label+":"))
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// runWizard drives an engine through the terminal until the form
// submits. Typing "/back" at any prompt returns to the previous page;
// pressing enter on a field that already has a value keeps it.
func runWizard(eng *wizard.Engine, pages []wizardPage) (wizard.Form, error) {
	for {
		page := pages[eng.Step()]
		fmt.Println()
		fmt.Println(renderTitle(fmt.Sprintf("%s (step %d of %d)", page.title, eng.Step()+1, eng.Steps())))

		back := false
		for _, f := range page.fields {
			value, err := promptField(eng, f)
			if err != nil {
				return nil, err
			}
			if value == "/back" {
				back = true
				break
			}
			eng.Set(f.name, value)
		}
		if back {
			eng.Back()
			continue
		}

		if eng.Step() == eng.Steps()-1 {
			if form, ok := eng.Submit(); ok {
				return form, nil
			}
		} else if eng.Next() {
			continue
		}
		printFieldErrors(eng.Errors(), pages)
	}
}

func promptField(eng *wizard.Engine, f wizardField) (string, error) {
	label := f.label
	if cur := eng.Value(f.name); cur != "" && !f.secret {
		label = fmt.Sprintf("%s [%s]", label, cur)
	}

	var value string
	var err error
	if f.secret {
		value, err = readPassword(label)
	} else {
		value, err = readLine(label)
	}
	if err != nil {
		return "", err
	}
	if value == "" {
		value = eng.Value(f.name)
	}
	return value, nil
}

func printFieldErrors(errs map[string]string, pages []wizardPage) {
	labels := make(map[string]string)
	for _, p := range pages {
		for _, f := range p.fields {
			labels[f.name] = f.label
		}
	}

	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		label := labels[name]
		if label == "" {
			label = name
		}
		fmt.Println(errStyle.Render(fmt.Sprintf("  %s %s", label, errs[name])))
	}
}
