package consist

// Version is the module release reported by the consist CLI.
const Version = "0.1.0"
