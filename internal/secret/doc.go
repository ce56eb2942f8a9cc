// Package secret loads and protects the key material of a hashing run.
//
// A site receives an encrypted salt file and holds an RSA private key. The
// Provider decrypts the salt file into a comma-separated secret string
// (site ID, site name, private salt, project salt, project ID and an
// optional private date) and checks it before any record is processed.
//
// The package also provides the authenticated ciphers used to encrypt
// hash output: FieldCipher seals individual hash values, and EncryptFile
// seals a finished hash file under a random session key that is wrapped
// with the recipient's RSA public key.
//
// Nothing in this package logs or formats salt or key values.
package secret
