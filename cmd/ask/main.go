// Ask asks Deep Thought a question from the terminal.
//
// Usage:
//
//	# Ask a local server, thinking included
//	ask "What is the meaning of life?"
//
//	# Ask a deployed server and skip the theatrics
//	ask --endpoint https://deepthought.example.com --no-delay "Why is the sky blue?"
package main

func main() {
	Execute()
}
