package main

func bar(i int) int { return i + 1 }
