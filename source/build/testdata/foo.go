package main

func foo(i int) int { return i * 2 }
