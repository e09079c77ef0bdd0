package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// AskConfirmation asks a yes/no question on out and reads the answer from
// in. force skips the prompt. Anything but y/yes is a no.
func AskConfirmation(in io.Reader, out io.Writer, message string, force bool) bool {
	if force {
		return true
	}
	fmt.Fprintf(out, "%s (y/N): ", message)

	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
