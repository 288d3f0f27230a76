package registry

// RegistryABI is the UPIRegistry contract interface. The subset here is the
// complete surface the app consumes: receiver directory reads, the two
// signed writes, caller-scoped payment queries and the two events.
const RegistryABI = `
[
  {
    "inputs": [
      { "internalType": "string", "name": "upiId", "type": "string" },
      { "internalType": "string", "name": "name", "type": "string" }
    ],
    "name": "addReceiver",
    "outputs": [{ "internalType": "bytes32", "name": "", "type": "bytes32" }],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      { "internalType": "bytes32", "name": "receiverId", "type": "bytes32" },
      { "internalType": "uint256", "name": "amountPaise", "type": "uint256" },
      { "internalType": "string", "name": "upiTxnId", "type": "string" }
    ],
    "name": "recordUPIPayment",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{ "internalType": "string", "name": "upiId", "type": "string" }],
    "name": "findReceiverIdByUPI",
    "outputs": [
      { "internalType": "bytes32", "name": "receiverId", "type": "bytes32" },
      { "internalType": "bool", "name": "exists", "type": "bool" }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{ "internalType": "bytes32", "name": "receiverId", "type": "bytes32" }],
    "name": "getReceiver",
    "outputs": [
      { "internalType": "string", "name": "upiId", "type": "string" },
      { "internalType": "string", "name": "name", "type": "string" },
      { "internalType": "address", "name": "addedBy", "type": "address" },
      { "internalType": "uint256", "name": "createdAt", "type": "uint256" },
      { "internalType": "bool", "name": "exists", "type": "bool" }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "getMyPayments",
    "outputs": [
      {
        "components": [
          { "internalType": "address", "name": "from", "type": "address" },
          { "internalType": "address", "name": "to", "type": "address" },
          { "internalType": "bytes32", "name": "receiverId", "type": "bytes32" },
          { "internalType": "uint256", "name": "amountPaise", "type": "uint256" },
          { "internalType": "string", "name": "upiTxnId", "type": "string" },
          { "internalType": "uint256", "name": "timestamp", "type": "uint256" }
        ],
        "internalType": "struct UPIRegistry.Payment[]",
        "name": "",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{ "internalType": "address", "name": "user", "type": "address" }],
    "name": "getPaymentsOf",
    "outputs": [
      {
        "components": [
          { "internalType": "address", "name": "from", "type": "address" },
          { "internalType": "address", "name": "to", "type": "address" },
          { "internalType": "bytes32", "name": "receiverId", "type": "bytes32" },
          { "internalType": "uint256", "name": "amountPaise", "type": "uint256" },
          { "internalType": "string", "name": "upiTxnId", "type": "string" },
          { "internalType": "uint256", "name": "timestamp", "type": "uint256" }
        ],
        "internalType": "struct UPIRegistry.Payment[]",
        "name": "",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{ "internalType": "bytes32", "name": "receiverId", "type": "bytes32" }],
    "name": "getPaymentsTo",
    "outputs": [
      {
        "components": [
          { "internalType": "address", "name": "from", "type": "address" },
          { "internalType": "address", "name": "to", "type": "address" },
          { "internalType": "bytes32", "name": "receiverId", "type": "bytes32" },
          { "internalType": "uint256", "name": "amountPaise", "type": "uint256" },
          { "internalType": "string", "name": "upiTxnId", "type": "string" },
          { "internalType": "uint256", "name": "timestamp", "type": "uint256" }
        ],
        "internalType": "struct UPIRegistry.Payment[]",
        "name": "",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [
      { "indexed": true, "internalType": "bytes32", "name": "receiverId", "type": "bytes32" },
      { "indexed": false, "internalType": "string", "name": "upiId", "type": "string" },
      { "indexed": false, "internalType": "string", "name": "name", "type": "string" },
      { "indexed": true, "internalType": "address", "name": "addedBy", "type": "address" }
    ],
    "name": "ReceiverAdded",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      { "indexed": true, "internalType": "address", "name": "from", "type": "address" },
      { "indexed": true, "internalType": "address", "name": "to", "type": "address" },
      { "indexed": true, "internalType": "bytes32", "name": "receiverId", "type": "bytes32" },
      { "indexed": false, "internalType": "uint256", "name": "amountPaise", "type": "uint256" },
      { "indexed": false, "internalType": "string", "name": "upiTxnId", "type": "string" },
      { "indexed": false, "internalType": "uint256", "name": "timestamp", "type": "uint256" }
    ],
    "name": "PaymentRecorded",
    "type": "event"
  }
]
`
