package internal

// Version is the subtrans release version
const Version = "0.3.0"
