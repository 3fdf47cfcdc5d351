// Command yt-decrypt resolves YouTube stream formats into playable URLs
// by extracting and replaying the player program's URL transforms.
package main

func main() {
	Execute()
}
