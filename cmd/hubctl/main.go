// Command hubctl is the operator CLI: it talks to the note store directly, without the API.
package main

func main() {
	Execute()
}
