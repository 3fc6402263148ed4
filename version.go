package gibbs

// Version is the release of the gibbs module.
const Version = "0.1.0"
