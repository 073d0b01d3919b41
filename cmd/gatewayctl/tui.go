package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	colorReset      = "\033[0m"
	colorBold       = "\033[1m"
	colorDim        = "\033[2m"
	colorOrangeANSI = "\033[38;5;208m"
	colorBlueANSI   = "\033[38;5;39m"
	colorPinkANSI   = "\033[38;5;212m"
	colorGrayANSI   = "\033[38;5;241m"
	colorRedANSI    = "\033[38;5;196m"
)

func getTermWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

func printWelcomeBanner(client *GatewayClient) {
	w := getTermWidth()
	sep := colorOrangeANSI + strings.Repeat("-", w) + colorReset
	fmt.Println(sep)
	fmt.Printf("%s%s hivegate chat %s\n", colorBold, colorOrangeANSI, colorReset)
	fmt.Println()
	fmt.Printf("  Server:  %s\n", client.BaseURL)
	if client.TenantID != "" {
		fmt.Printf("  Tenant:  %s\n", client.TenantID)
	}
	if client.Model != "" {
		fmt.Printf("  Model:   %s\n", client.Model)
	}
	fmt.Printf("  Session: %s\n", client.SessionKey)
	fmt.Println()
	fmt.Printf("%sTips:%s\n", colorOrangeANSI+colorBold, colorReset)
	fmt.Println("  Type a message and press Enter to send")
	fmt.Println("  /clear  - reset conversation")
	fmt.Println("  /quit   - exit")
	fmt.Println("  Ctrl+C  - exit")
	fmt.Println(sep)
	fmt.Println()
}

func printSeparator() {
	w := getTermWidth()
	n := w - 2
	if n < 20 {
		n = 20
	}
	fmt.Printf("%s%s%s\n", colorGrayANSI, strings.Repeat("-", n), colorReset)
}

func printUserMessage(msg string) {
	printSeparator()
	fmt.Printf("%s%syou%s\n", colorBold, colorBlueANSI, colorReset)
	fmt.Printf("%s%s%s\n", colorBlueANSI, msg, colorReset)
}

func printAssistantLabel() {
	printSeparator()
	fmt.Printf("%s%sgateway%s\n", colorBold, colorPinkANSI, colorReset)
}

func printError(msg string) {
	fmt.Printf("%s%sError: %s%s\n", colorBold, colorRedANSI, msg, colorReset)
}

func renderMarkdownToTerminal(content string, width int) string {
	if width <= 0 {
		width = 76
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithColorProfile(termenv.ANSI256),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func readLine(prompt string) (string, bool) {
	fmt.Print(prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text(), true
	}
	return "", false
}

// RunTUI starts the interactive chat loop, printing directly to stdout
// (no alt-screen) so output stays selectable.
func RunTUI(client *GatewayClient) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Printf("\n\n%sGoodbye!%s\n\n", colorDim, colorReset)
		os.Exit(0)
	}()

	printWelcomeBanner(client)

	history := []ChatMessage{}
	prompt := colorOrangeANSI + colorBold + "> " + colorReset

	for {
		input, ok := readLine(prompt)
		if !ok {
			fmt.Printf("\n%sGoodbye!%s\n\n", colorDim, colorReset)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch input {
		case "/quit", "/exit":
			fmt.Printf("\n%sGoodbye!%s\n\n", colorDim, colorReset)
			return nil
		case "/clear":
			history = []ChatMessage{}
			fmt.Printf("%sConversation cleared.%s\n\n", colorGrayANSI, colorReset)
			continue
		}

		printUserMessage(input)
		history = append(history, ChatMessage{Role: "user", Content: input})

		printAssistantLabel()
		fmt.Printf("%sThinking...%s", colorGrayANSI, colorReset)

		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

		var firstDelta bool
		var fullContent strings.Builder

		_, err := client.ChatStream(ctx, history, func(delta string) {
			if !firstDelta {
				fmt.Print("\r\033[K")
				firstDelta = true
			}
			fmt.Print(delta)
			fullContent.WriteString(delta)
		})
		cancel()

		if !firstDelta {
			fmt.Print("\r\033[K")
		}

		content := fullContent.String()

		if err != nil {
			fmt.Println()
			if content != "" {
				history = append(history, ChatMessage{Role: "assistant", Content: content})
			}
			printError(err.Error())
		} else {
			fmt.Println()
			history = append(history, ChatMessage{Role: "assistant", Content: content})

			w := getTermWidth() - 4
			rendered := renderMarkdownToTerminal(content, w)

			rawLines := strings.Count(content, "\n") + 1
			for i := 0; i < rawLines; i++ {
				fmt.Print("\033[A\033[K")
			}
			fmt.Println(rendered)
		}

		fmt.Println()
	}
}

// RunOnce performs a single chat request with streaming output.
func RunOnce(client *GatewayClient, message string, out func(string)) error {
	messages := []ChatMessage{{Role: "user", Content: message}}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	_, err := client.ChatStream(ctx, messages, func(delta string) {
		if out != nil {
			out(delta)
		}
	})
	return err
}
