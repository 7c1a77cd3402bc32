// Command cartai runs the shopping-cart assistant from the terminal or over HTTP.
package main

func main() {
	Execute()
}
