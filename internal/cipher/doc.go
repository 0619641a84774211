// Package cipher implements the 27 symbol shift cipher.
//
// Every character of the plaintext is moved forward in the alphabet by one
// decimal digit of the key: the first character by the key's first digit,
// the second by its second digit, and so on. A key therefore needs exactly
// as many digits as the text has characters. Keys are either entered by the
// user (Manual) or generated (Random).
//
// The cipher is a toy. It has no decryption and offers no secrecy.
package cipher
