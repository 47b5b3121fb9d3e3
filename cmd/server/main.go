// Command liftlog runs the workout logging API and its maintenance tasks.
package main

func main() {
	Execute()
}
