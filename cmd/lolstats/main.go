// Command lolstats queues historical analyses and prints stored results.
package main

func main() {
	Execute()
}
