// Command notechain-cli manages notes on a notechain-server and inspects
// a server's stable storage offline.
//
// Usage:
//
//	notechain-cli --caller alice note create --title Groceries --content "milk, eggs"
//	notechain-cli --caller alice -o yaml note list
//	notechain-cli stable inspect --data-dir /var/lib/notechain-server/data
//	notechain-cli admin snapshot --socket /run/notechain/admin.sock
package main
